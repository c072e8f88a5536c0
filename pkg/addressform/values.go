package addressform

// Values is the value tree of a submitted form.
type Values struct {
	Name    string  `json:"name" yaml:"name"`
	Email   string  `json:"email" yaml:"email"`
	Address Address `json:"address" yaml:"address"`
}

// Address is the nested address group.
type Address struct {
	Area    string `json:"area" yaml:"area"`
	Street  string `json:"street" yaml:"street"`
	Pincode string `json:"pincode" yaml:"pincode"`
}

// Get returns the value of a field.
func (v Values) Get(id FieldID) string {
	switch id {
	case Name:
		return v.Name
	case Email:
		return v.Email
	case Area:
		return v.Address.Area
	case Street:
		return v.Address.Street
	case Pincode:
		return v.Address.Pincode
	}
	return ""
}

// Set assigns the value of a field.
func (v *Values) Set(id FieldID, s string) {
	switch id {
	case Name:
		v.Name = s
	case Email:
		v.Email = s
	case Area:
		v.Address.Area = s
	case Street:
		v.Address.Street = s
	case Pincode:
		v.Address.Pincode = s
	}
}

// Tree returns the nested map shape used by the form controls.
func (v Values) Tree() map[string]any {
	return map[string]any{
		Name.String():  v.Name,
		Email.String(): v.Email,
		AddressGroup: map[string]any{
			Area.String():    v.Address.Area,
			Street.String():  v.Address.Street,
			Pincode.String(): v.Address.Pincode,
		},
	}
}
