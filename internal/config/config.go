package config

import (
	stderrors "errors"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/hvariant/shreddit2/internal/errors"
)

// DefaultPath is the credentials file used when --config is not given.
const DefaultPath = "credentials.ini"

// Section is the INI section holding the Reddit credentials.
const Section = "reddit"

// Credentials holds the script-app credentials for the Reddit OAuth password grant.
type Credentials struct {
	// ClientID is the id of the Reddit "script" application
	ClientID string `ini:"client_id"`

	// ClientSecret is the secret of the Reddit "script" application
	ClientSecret string `ini:"client_secret"`

	// Username is the account whose history is archived or shredded
	Username string `ini:"username"`

	// Password is the account password
	Password string `ini:"password"`

	// UserAgent is sent on every API request; Reddit rejects generic agents
	UserAgent string `ini:"user_agent"`
}

// Load reads the [reddit] section of the INI file at path.
// Every credential field must be present and non-empty; unknown keys are ignored.
func Load(path string) (*Credentials, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewInvalidConfig(path, "file not found")
		}
		return nil, errors.NewInternal(err)
	}

	return Parse(path, data)
}

// Parse decodes credentials from INI content. The name is only used in error messages.
func Parse(name string, data []byte) (*Credentials, error) {
	// Secrets may legitimately contain '#' or ';'.
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		InsensitiveKeys:     true,
	}, data)
	if err != nil {
		return nil, errors.NewInvalidConfig(name, err.Error())
	}

	section, err := file.GetSection(Section)
	if err != nil {
		return nil, errors.NewInvalidConfig(name, "missing section ["+Section+"]")
	}

	creds := &Credentials{}
	if err := section.MapTo(creds); err != nil {
		return nil, errors.NewInvalidConfig(name, err.Error())
	}

	if err := creds.Validate(); err != nil {
		return nil, errors.NewInvalidConfig(name, err.Error())
	}
	return creds, nil
}

// Validate reports every empty field, in declaration order.
func (c *Credentials) Validate() error {
	var missing []string
	fields := []struct {
		key   string
		value string
	}{
		{"client_id", c.ClientID},
		{"client_secret", c.ClientSecret},
		{"username", c.Username},
		{"password", c.Password},
		{"user_agent", c.UserAgent},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return stderrors.New("missing keys in [" + Section + "]: " + strings.Join(missing, ", "))
	}
	return nil
}
