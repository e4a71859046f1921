package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const detectorDoc = "Detector base class.\n" +
	"\n" +
	"    Longer description\n" +
	"    here.\n" +
	"\n" +
	"    Parameters\n" +
	"    ----------\n" +
	"    prefix : str\n" +
	"        The PV prefix.\n" +
	"    name : str, keyword-only\n" +
	"        Name.\n" +
	"\n" +
	"    Notes\n" +
	"    -----\n" +
	"    Some notes.\n" +
	"    "

func TestParseDocstring(t *testing.T) {
	sections := ParseDocstring(detectorDoc)

	assert.Equal(t, []string{"Detector base class."}, sections["Summary"])
	assert.Equal(t, []string{"Longer description", "here."}, sections["Extended Summary"])
	assert.Equal(t, []DocParam{
		{Name: "prefix", Type: "str", Desc: []string{"The PV prefix."}},
		{Name: "name", Type: "str, keyword-only", Desc: []string{"Name."}},
	}, sections["Parameters"])
	assert.Equal(t, []string{"Some notes."}, sections["Notes"])
	assert.Equal(t, []DocParam{}, sections["Returns"])
	assert.Equal(t, []string{}, sections["Examples"])
}

func TestParseDocstring_Plain(t *testing.T) {
	sections := ParseDocstring("None")

	assert.Equal(t, []string{"None"}, sections["Summary"])
	assert.Equal(t, []string{}, sections["Extended Summary"])
	assert.Equal(t, []DocParam{}, sections["Parameters"])
}

func TestParseDocstring_ParamWithoutType(t *testing.T) {
	sections := ParseDocstring("Summary.\n\nAttributes\n----------\nconnected\n    Whether all PVs are connected.\n\n    Updated on every callback.\n")

	assert.Equal(t, []DocParam{
		{Name: "connected", Desc: []string{"Whether all PVs are connected.", "", "Updated on every callback."}},
	}, sections["Attributes"])
}
