package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	composed   = "caf\u00e9"
	decomposed = "cafe\u0301"
)

func TestAmbiguousKeys(t *testing.T) {
	doc := IRObject{
		composed:   IRInt(1),
		decomposed: IRInt(2),
		"plain":    IRInt(3),
		"x": IRObject{
			composed:   IRInt(4),
			decomposed: IRInt(5),
			"other":    IRInt(6),
		},
		"list": IRArray{IRObject{composed: IRInt(7), decomposed: IRInt(8)}},
	}

	assert.Equal(t, []string{
		decomposed,
		composed,
		"x." + decomposed,
		"x." + composed,
	}, AmbiguousKeys(doc))
}

func TestAmbiguousKeysNone(t *testing.T) {
	assert.Empty(t, AmbiguousKeys(IRObject{composed: IRInt(1), "a": IRObject{"": IRInt(2)}}))
	assert.Empty(t, AmbiguousKeys(IRObject{}))
}
