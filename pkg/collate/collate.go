// Package collate implements the total order of view keys.
//
// Ascending order:
//
//	null < false < true < numbers < strings < arrays < objects
//
// Numbers compare by value, strings by unicode code point, arrays
// element-wise (a shorter array is less if it is a prefix of the other).
// Objects compare by number of members first, then by their sorted
// member names and finally by the member values in name order.
package collate

import (
	"fmt"
	"sort"
)

// type ranks, also used as tags of the binary encoding
const (
	rankNull   byte = 0x01
	rankFalse  byte = 0x02
	rankTrue   byte = 0x03
	rankNumber byte = 0x04
	rankString byte = 0x05
	rankArray  byte = 0x06
	rankObject byte = 0x07
)

// Compare returns -1, 0 or +1 if a is less, equal or greater than b.
// Both values must be of the normalized universe or of a type
// Normalize accepts, Compare panics otherwise.
func Compare(a, b interface{}) int {
	a, b = mustCanonical(a), mustCanonical(b)

	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpByte(ra, rb)
	}

	switch ra {
	case rankNumber:
		fa, fb := a.(float64), b.(float64)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case rankString:
		sa, sb := a.(string), b.(string)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	case rankArray:
		return compareArrays(a.([]interface{}), b.([]interface{}))
	case rankObject:
		return compareObjects(a.(map[string]interface{}), b.(map[string]interface{}))
	}

	// null, false and true have no payload
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b interface{}) bool {
	return Compare(a, b) < 0
}

// Equal reports whether a and b are the same key.
func Equal(a, b interface{}) bool {
	return Compare(a, b) == 0
}

// Sort sorts the keys ascending and returns them.
func Sort(keys []interface{}) []interface{} {
	sort.SliceStable(keys, func(i, j int) bool {
		return Less(keys[i], keys[j])
	})
	return keys
}

func compareArrays(a, b []interface{}) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareObjects(a, b map[string]interface{}) int {
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}

	ka, kb := sortedKeys(a), sortedKeys(b)
	for i := range ka {
		switch {
		case ka[i] < kb[i]:
			return -1
		case ka[i] > kb[i]:
			return 1
		}
	}
	for i := range ka {
		if c := Compare(a[ka[i]], b[kb[i]]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rank(v interface{}) byte {
	switch t := v.(type) {
	case nil:
		return rankNull
	case bool:
		if t {
			return rankTrue
		}
		return rankFalse
	case float64:
		return rankNumber
	case string:
		return rankString
	case []interface{}:
		return rankArray
	case map[string]interface{}:
		return rankObject
	}
	panic(fmt.Sprintf("collate: unsupported type %T", v))
}

// mustCanonical returns the value unchanged if it is already part of
// the normalized universe, so that comparing stored keys does not allocate.
func mustCanonical(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		return normalizeFloat(t)
	case nil, bool, string:
		return v
	case []interface{}, map[string]interface{}:
		// elements are checked when they are compared
		return v
	}
	n, err := Normalize(v)
	if err != nil {
		panic(fmt.Sprintf("collate: %v", err))
	}
	return n
}

func cmpByte(a, b byte) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
