package util

import (
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

// PrettyPrint dumps a value as indented JSON, or via spew when
// the value cannot be marshaled
func PrettyPrint(val interface{}) {
	buf, err := json.Marshal(val)
	if err != nil {
		spew.Dump(errors.Wrap(err, "PrettyPrint(): failed to marshal value"), val)
		return
	}

	fmt.Printf("%s", pretty.Pretty(buf))
}
