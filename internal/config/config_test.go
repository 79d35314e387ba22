package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hvariant/shreddit2/internal/errors"
)

const validINI = `[reddit]
client_id = abc123
client_secret = s3cr3t
username = someone
password = hunter#2;x
user_agent = shreddit/1.0 by someone
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.ini")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, validINI)

	creds, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Credentials{
		ClientID:     "abc123",
		ClientSecret: "s3cr3t",
		Username:     "someone",
		Password:     "hunter#2;x",
		UserAgent:    "shreddit/1.0 by someone",
	}
	if *creds != want {
		t.Errorf("Load() = %+v, want %+v", *creds, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("error = %q, want mention of missing file", err.Error())
	}
}

func TestLoad_MissingSection(t *testing.T) {
	path := writeConfig(t, "[other]\nclient_id = x\n")

	_, err := Load(path)
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "missing section [reddit]") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_MissingKeys(t *testing.T) {
	path := writeConfig(t, "[reddit]\nclient_id = x\nusername = someone\npassword =\n")

	_, err := Load(path)
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
	}
	for _, key := range []string{"client_secret", "password", "user_agent"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %q", err.Error(), key)
		}
	}
	if strings.Contains(err.Error(), "client_id") {
		t.Errorf("error %q names a key that is present", err.Error())
	}
}

func TestParse_KeysCaseInsensitive(t *testing.T) {
	data := strings.ReplaceAll(validINI, "client_id", "CLIENT_ID")

	creds, err := Parse("mem", []byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if creds.ClientID != "abc123" {
		t.Errorf("ClientID = %q, want %q", creds.ClientID, "abc123")
	}
}

func TestParse_IgnoresUnknownKeys(t *testing.T) {
	creds, err := Parse("mem", []byte(validINI+"ratelimit_seconds = 5\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if creds.Username != "someone" {
		t.Errorf("Username = %q, want %q", creds.Username, "someone")
	}
}

func TestValidate_AllPresent(t *testing.T) {
	c := &Credentials{ClientID: "a", ClientSecret: "b", Username: "c", Password: "d", UserAgent: "e"}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_WhitespaceIsEmpty(t *testing.T) {
	c := &Credentials{ClientID: "a", ClientSecret: "b", Username: "  ", Password: "d", UserAgent: "e"}
	err := c.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("error = %q, want mention of username", err.Error())
	}
}
