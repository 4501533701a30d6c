package cmds

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

var stdin io.Reader = os.Stdin

// readJSONArg decodes the JSON document named by arg, or stdin for "-".
func readJSONArg(arg string, v interface{}) error {
	var (
		b   []byte
		err error
	)
	if arg == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(arg)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", arg)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrapf(err, "parse %s", arg)
	}
	return nil
}
