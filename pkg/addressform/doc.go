// Package addressform implements the address-capture form: a name, an
// email and a nested address group with area, street and pincode.
//
// A Form owns a control tree built by the form package. Every value change
// reruns Aggregate, which walks the tree and rewrites the ErrorMap: a field
// shows its messages only while it is invalid and has been touched or
// edited.
//
//	f := addressform.New(addressform.WithSubmitter(sink))
//	f.Set(addressform.Pincode, "12345")
//	f.Error(addressform.Pincode) // "Invalid Pincode"
//
//	ok, err := f.Submit(ctx) // marks all touched; delivers only if valid
//	f.Reset()
package addressform
