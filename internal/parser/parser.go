package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors"

	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/jsonvalue"
)

// Parse reads exactly one JSON document from reader
func Parse(reader io.Reader) (jsonvalue.Value, error) {
	v, err := jsonvalue.Decode(reader)
	if err == nil {
		return v, nil
	}

	if stderrors.Is(err, io.EOF) {
		return jsonvalue.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if stderrors.Is(err, errors.ErrMultipleJSON) {
		return jsonvalue.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return jsonvalue.Value{}, errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return jsonvalue.Value{}, errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return jsonvalue.Value{}, errors.NewParsingError("failed to decode JSON", err)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (jsonvalue.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return jsonvalue.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (jsonvalue.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return jsonvalue.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return jsonvalue.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return jsonvalue.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return jsonvalue.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return jsonvalue.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}

// ParseInput parses the file at filePath, or stdin when filePath is empty.
// A nil stdin means no input is available.
func ParseInput(filePath string, stdin io.Reader) (jsonvalue.Value, error) {
	if filePath != "" {
		return ParseFile(filePath)
	}
	if stdin == nil {
		return jsonvalue.Value{}, errors.NewInputError("no input", errors.ErrNoInput)
	}
	return Parse(stdin)
}
