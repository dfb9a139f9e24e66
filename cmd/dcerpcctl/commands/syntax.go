package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mellowdrifter/dcerpc/pdu"
)

// errInvalidSyntaxSpec indicates a "<uuid>.<version>" flag value couldn't
// be parsed.
var errInvalidSyntaxSpec = errors.New("expected <uuid>.<version>")

// parsePresentationSyntax parses a "<uuid>.<version>" CLI flag value into
// a pdu.PresentationSyntax.
func parsePresentationSyntax(spec string) (pdu.PresentationSyntax, error) {
	idx := strings.LastIndex(spec, ".")
	if idx < 0 {
		return pdu.PresentationSyntax{}, fmt.Errorf("%q: %w", spec, errInvalidSyntaxSpec)
	}

	id, err := pdu.ParseUUID(spec[:idx])
	if err != nil {
		return pdu.PresentationSyntax{}, fmt.Errorf("parse uuid in %q: %w", spec, err)
	}

	version, err := strconv.ParseUint(spec[idx+1:], 10, 32)
	if err != nil {
		return pdu.PresentationSyntax{}, fmt.Errorf("parse version in %q: %w", spec, err)
	}

	return pdu.PresentationSyntax{UUID: id, Version: uint32(version)}, nil
}
