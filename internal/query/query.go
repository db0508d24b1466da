// Package query builds parameterized Cypher statements for the knowledge
// engine. Free text is always bound as a parameter; only relationship types
// and labels that pass ValidateIdentifier are written into query text.
package query

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidIdentifier is returned for a label or relationship type that
	// is not a plain identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrUnsupportedOperation is returned for an unknown analysis or search type.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Result caps.
const (
	MaxPaths        = 10
	MaxGapResults   = 20
	MaxRelated      = 10
	MaxHops         = 10
	GapCandidateCap = 10000
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Statement is a query template with its bound parameters.
type Statement struct {
	Cypher string
	Params map[string]any
}

// ValidateIdentifier checks that s may be interpolated as a label or type.
func ValidateIdentifier(s string) error {
	if !identifierPattern.MatchString(s) {
		return errors.Wrapf(ErrInvalidIdentifier, "%q", s)
	}
	return nil
}

// IsID reports whether ref has the shape of an entity id rather than a name.
func IsID(ref string) bool {
	_, err := uuid.Parse(ref)
	return err == nil && len(ref) == 36
}

// display returns the expression that yields a node's human readable text.
func display(v string) string {
	return fmt.Sprintf("coalesce(%[1]s.name, %[1]s.statement, %[1]s.content, %[1]s.title, '')", v)
}

// relPattern renders the relationship part of a variable-length pattern,
// e.g. "[:A|B*1..3]".
func relPattern(types []string, maxHops int) (string, error) {
	if maxHops < 1 || maxHops > MaxHops {
		return "", errors.Errorf("hop bound %d outside 1..%d", maxHops, MaxHops)
	}
	if len(types) == 0 {
		return fmt.Sprintf("[*1..%d]", maxHops), nil
	}
	for _, t := range types {
		if err := ValidateIdentifier(t); err != nil {
			return "", errors.Wrap(err, "relationship type")
		}
	}
	return fmt.Sprintf("[:%s*1..%d]", strings.Join(types, "|"), maxHops), nil
}

// matchRef renders a predicate resolving variable v from the parameter
// param: by id when ref looks like one, otherwise by exact or substring text.
func matchRef(v, param, ref string) string {
	if IsID(ref) {
		return fmt.Sprintf("%s.id = $%s", v, param)
	}
	d := display(v)
	return fmt.Sprintf("(%s = $%s OR toLower(%s) CONTAINS toLower($%s))", d, param, d, param)
}

// rankRef orders candidates of matchRef with exact matches first, then shortest text.
func rankRef(v, param string) string {
	d := display(v)
	return fmt.Sprintf("CASE WHEN %s = $%s THEN 0 ELSE 1 END, size(%s)", d, param, d)
}

func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "encode metadata")
	}
	return string(data), nil
}

// DecodeMetadata reverses the serialization applied to stored metadata.
func DecodeMetadata(v any) map[string]any {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
