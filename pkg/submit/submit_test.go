package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/addressform/pkg/addressform"
)

var sample = addressform.Values{
	Name:  "Asha",
	Email: "asha@example.com",
	Address: addressform.Address{
		Area:    "Koregaon Park",
		Street:  "Lane 5",
		Pincode: "411001",
	},
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestLogSubmit(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := sink.Submit(context.Background(), sample); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"data submitted", "pincode=411001", "email=asha@example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestMemorySubmit(t *testing.T) {
	sink := NewMemory()
	sink.now = fixedClock

	if err := sink.Submit(context.Background(), sample); err != nil {
		t.Fatal(err)
	}

	recs := sink.Records()
	if len(recs) != 1 || sink.Len() != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	if diff := cmp.Diff(sample, recs[0].Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(recs[0].ID, "20240301T123000Z-") {
		t.Errorf("ID = %q", recs[0].ID)
	}
}

func TestMemoryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := NewMemory()
	if err := sink.Submit(ctx, sample); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sink.Len() != 0 {
		t.Error("cancelled submission was stored")
	}
}

func TestDiskSubmit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewDisk(dir)
	if err != nil {
		t.Fatal(err)
	}
	sink.now = fixedClock

	if err := sink.Submit(context.Background(), sample); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Fatalf("entries = %v", entries)
	}

	body, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sample, rec.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDiskRequiresDir(t *testing.T) {
	if _, err := NewDisk(""); !errors.Is(err, ErrNoDir) {
		t.Errorf("err = %v, want ErrNoDir", err)
	}
}

// fakeS3 records PutObject calls.
type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Submit(t *testing.T) {
	client := &fakeS3{}
	sink, err := NewS3(client, "forms", "addresses")
	if err != nil {
		t.Fatal(err)
	}
	sink.now = fixedClock

	if err := sink.Submit(context.Background(), sample); err != nil {
		t.Fatal(err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("puts = %d", len(client.inputs))
	}
	in := client.inputs[0]
	if *in.Bucket != "forms" {
		t.Errorf("bucket = %q", *in.Bucket)
	}
	if !strings.HasPrefix(*in.Key, "addresses/20240301T123000Z-") || !strings.HasSuffix(*in.Key, ".json") {
		t.Errorf("key = %q", *in.Key)
	}
	if *in.ContentType != "application/json" {
		t.Errorf("content type = %q", *in.ContentType)
	}

	var rec Record
	if err := json.Unmarshal(client.bodies[0], &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Values != sample {
		t.Errorf("body values = %+v", rec.Values)
	}
	if in.Metadata["submission-id"] != rec.ID {
		t.Errorf("metadata id = %q, record id = %q", in.Metadata["submission-id"], rec.ID)
	}
}

func TestS3SubmitError(t *testing.T) {
	denied := errors.New("access denied")
	sink, _ := NewS3(&fakeS3{err: denied}, "forms", "")

	err := sink.Submit(context.Background(), sample)
	if !errors.Is(err, denied) {
		t.Errorf("err = %v, want wrapped %v", err, denied)
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(&fakeS3{}, "", "x"); !errors.Is(err, ErrNoBucket) {
		t.Errorf("err = %v, want ErrNoBucket", err)
	}
}

func TestSanitizerClean(t *testing.T) {
	s := NewSanitizer()
	tests := map[string]string{
		`<b>Asha</b><script>alert(1)</script>`: "Asha",
		"  Lane & 5 ":                          "Lane & 5",
		"<b></b>":                              "",
		"   ":                                  "",
		"411001":                               "411001",
	}
	for in, want := range tests {
		if got := s.Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizedFormSubmission(t *testing.T) {
	mem := NewMemory()
	f := addressform.New(
		addressform.WithCleaner(NewSanitizer()),
		addressform.WithSubmitter(mem),
	)

	dirty := sample
	dirty.Name = "<b>Asha</b>"
	dirty.Address.Street = "  Lane 5 "
	f.SetAll(dirty)

	ok, err := f.Submit(context.Background())
	if !ok || err != nil {
		t.Fatalf("Submit = (%v, %v)", ok, err)
	}
	if mem.Len() != 1 {
		t.Fatalf("records = %d, want 1", mem.Len())
	}
	got := mem.Records()[0].Values
	if got.Name != "Asha" || got.Address.Street != "Lane 5" {
		t.Errorf("values = %+v", got)
	}
}

func TestSanitizedEmptyValuesAreRejected(t *testing.T) {
	mem := NewMemory()
	f := addressform.New(
		addressform.WithCleaner(NewSanitizer()),
		addressform.WithSubmitter(mem),
	)

	f.SetAll(addressform.Values{
		Name:    "<b></b>",
		Email:   "a@b.co",
		Address: addressform.Address{Area: "   ", Pincode: "123456"},
	})

	ok, err := f.Submit(context.Background())
	if ok || err != nil {
		t.Fatalf("Submit = (%v, %v), want (false, nil)", ok, err)
	}
	if mem.Len() != 0 {
		t.Errorf("records = %d, want 0", mem.Len())
	}
	errs := f.Errors()
	if errs.Get(addressform.Name) != "Name required" {
		t.Errorf("name error = %q", errs.Get(addressform.Name))
	}
	if errs.Get(addressform.Area) != "Area required" {
		t.Errorf("area error = %q", errs.Get(addressform.Area))
	}

	// Set cleans too.
	f.Set(addressform.Name, "<i></i>")
	if v := f.Values(); v.Name != "" {
		t.Errorf("name = %q", v.Name)
	}
}
