package module

import (
	"os"

	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/net/http/bind"

	"gopkg.in/yaml.v3"
)

// mirrorFile is the on-disk mirror list, kept in probe order
//
//	mirrors:
//	  - basket-01.wbbasket.ru
//	  - basket-02.wbbasket.ru
type mirrorFile struct {
	Mirrors []string `yaml:"mirrors" validate:"required,min=1,dive,hostname|hostname_port|url"`
}

// LoadMirrors reads and validates a YAML mirror list
func LoadMirrors(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read mirrors file %s", path)
	}
	var f mirrorFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "parse mirrors file %s", path)
	}
	if err := bind.Struct(f); err != nil {
		return nil, err
	}
	return f.Mirrors, nil
}

// ValidateMirrors applies the mirrors file rules to a list from MARKET_MIRRORS or overrides
func ValidateMirrors(hosts []string) error {
	return bind.Struct(mirrorFile{Mirrors: hosts})
}
