package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestBigIntJSON(t *testing.T) {
	c := qt.New(t)
	x, ok := new(BigInt).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617")
	c.Assert(ok, qt.IsTrue)

	data, err := json.Marshal(x)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals,
		`"21888242871839275222246405745257275088548364400416034343698204186575808495617"`)

	got := new(BigInt)
	c.Assert(json.Unmarshal(data, got), qt.IsNil)
	c.Assert(got.Equal(x), qt.IsTrue)

	// numeric (unquoted) JSON is accepted too
	c.Assert(json.Unmarshal([]byte("200"), got), qt.IsNil)
	c.Assert(got.String(), qt.Equals, "200")

	c.Assert(json.Unmarshal([]byte(`"not a number"`), got), qt.IsNotNil)
}

func TestBigIntJSONInputsMap(t *testing.T) {
	c := qt.New(t)
	// the shape of a circom inputs file
	var inputs map[string]*BigInt
	c.Assert(json.Unmarshal([]byte(`{"a":"20","b":10}`), &inputs), qt.IsNil)
	c.Assert(inputs["a"].String(), qt.Equals, "20")
	c.Assert(inputs["b"].String(), qt.Equals, "10")

	data, err := json.Marshal(inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, `"a":"20"`)
	c.Assert(string(data), qt.Contains, `"b":"10"`)
}

func TestBigIntText(t *testing.T) {
	c := qt.New(t)
	txt, err := NewInt(42).MarshalText()
	c.Assert(err, qt.IsNil)
	c.Assert(string(txt), qt.Equals, "42")

	// nil receiver marshals as zero
	var nilInt *BigInt
	txt, err = nilInt.MarshalText()
	c.Assert(err, qt.IsNil)
	c.Assert(string(txt), qt.Equals, "0")

	got := new(BigInt)
	c.Assert(got.UnmarshalText([]byte("150")), qt.IsNil)
	c.Assert(got.String(), qt.Equals, "150")
	c.Assert(got.UnmarshalText([]byte("nope")), qt.IsNotNil)
}

func TestBigIntCBOR(t *testing.T) {
	c := qt.New(t)
	x, ok := new(BigInt).SetString("21888242871839275222246405745257275088696311157297823662689037894645226208583")
	c.Assert(ok, qt.IsTrue)

	data, err := cbor.Marshal(x)
	c.Assert(err, qt.IsNil)

	got := new(BigInt)
	c.Assert(cbor.Unmarshal(data, got), qt.IsNil)
	c.Assert(got.Equal(x), qt.IsTrue)
}

func TestBigIntSetString(t *testing.T) {
	c := qt.New(t)
	_, ok := new(BigInt).SetString("123456789")
	c.Assert(ok, qt.IsTrue)
	_, ok = new(BigInt).SetString("0x10")
	c.Assert(ok, qt.IsFalse)
}

func TestBigIntEqual(t *testing.T) {
	c := qt.New(t)
	c.Assert(NewInt(7).Equal(NewInt(7)), qt.IsTrue)
	c.Assert(NewInt(7).Equal(NewInt(8)), qt.IsFalse)
	var nilInt *BigInt
	c.Assert(nilInt.Equal(nil), qt.IsTrue)
	c.Assert(NewInt(7).Equal(nil), qt.IsFalse)
}
