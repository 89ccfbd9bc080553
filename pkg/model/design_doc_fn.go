package model

import (
	"fmt"
	"strconv"
	"strings"
)

type FnType string

const (
	ViewFn FnType = "views"
)

// DesignDocFn names a function of a design document.
type DesignDocFn struct {
	Type        FnType
	DesignDocID string
	FnName      string
}

func (ddfn DesignDocFn) String() string {
	docName := strings.TrimPrefix(ddfn.DesignDocID, DesignDocPrefix)
	return string(ddfn.Type) + ":" + docName + ":" + ddfn.FnName
}

// ViewName returns the "ddoc/view" form of the name.
func (ddfn DesignDocFn) ViewName() string {
	docName := strings.TrimPrefix(ddfn.DesignDocID, DesignDocPrefix)
	return docName + "/" + ddfn.FnName
}

func (ddfn DesignDocFn) Bucket() []byte {
	return []byte(ddfn.String())
}

// GenerationBucket returns the name of the bucket holding the
// index rows of the given build generation.
func (ddfn DesignDocFn) GenerationBucket(gen uint64) []byte {
	return []byte(ddfn.String() + "#" + strconv.FormatUint(gen, 10))
}

func NewViewFn(designDocID, fnName string) DesignDocFn {
	if !strings.HasPrefix(designDocID, DesignDocPrefix) {
		designDocID = DesignDocPrefix + designDocID
	}
	return DesignDocFn{
		Type:        ViewFn,
		DesignDocID: designDocID,
		FnName:      fnName,
	}
}

// ParseViewName parses names of the form "ddoc/view".
func ParseViewName(name string) (*DesignDocFn, error) {
	name = strings.TrimPrefix(name, DesignDocPrefix)
	i := strings.LastIndex(name, "/")
	if i <= 0 || i == len(name)-1 {
		return nil, fmt.Errorf("invalid view name %q, expected <design doc>/<view>", name)
	}
	ddfn := NewViewFn(name[:i], name[i+1:])
	return &ddfn, nil
}

func ParseDesignDocFn(str string) (*DesignDocFn, error) {
	parts := strings.Split(str, ":")

	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid design doc fn %q, expected 3 got %d parts", str, len(parts))
	}

	return &DesignDocFn{
		Type:        FnType(parts[0]),
		DesignDocID: DesignDocPrefix + parts[1],
		FnName:      parts[2],
	}, nil
}
