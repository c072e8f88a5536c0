package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/addressform/internal/errors"
	"github.com/vango-dev/addressform/pkg/addressform"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

// readValues decodes a values file. JSON is accepted as YAML flow syntax;
// unknown keys are rejected.
func readValues(path string) (addressform.Values, error) {
	var v addressform.Values

	data, err := os.ReadFile(path)
	if err != nil {
		return v, errors.New(errors.CodeValuesRead).
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return v, errors.New(errors.CodeValuesSyntax).
				WithDetail(path + " is empty")
		}
		return v, yamlError(errors.New(errors.CodeValuesSyntax), path, err)
	}
	return v, nil
}

// yamlError attaches the line reported by a yaml.v3 error to e.
func yamlError(e *errors.Error, path string, err error) *errors.Error {
	e.Wrap(err)
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			e.WithLocation(path, line, 0)
		}
	}
	return e
}
