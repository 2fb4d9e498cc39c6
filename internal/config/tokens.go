package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ru-addr/internal/address"
)

// TokenLists holds the ordered indicator substrings for each extracted component.
// Order inside each list is match priority.
type TokenLists struct {
	District []string `yaml:"district" json:"district"`
	City     []string `yaml:"city" json:"city"`
	Suburb   []string `yaml:"suburb" json:"suburb"`
	Unit     []string `yaml:"unit" json:"unit"`
}

// Tokens is the on-disk token configuration
type Tokens struct {
	TokenLists TokenLists       `yaml:"token_lists"`
	FieldMap   address.FieldMap `yaml:"field_map,omitempty"`
}

// DefaultTokenLists returns the Russian indicator lists
func DefaultTokenLists() TokenLists {
	return TokenLists{
		District: []string{"район", "с/с"},
		City:     []string{"г.", "город", "пгт", "п.г.т.", "с."},
		Suburb:   []string{"мкр", "р-н", "р-он", "район", "микрорайон"},
		Unit:     []string{"помещени", "комнат", "этаж", "кв.", "к.", "пом", "нп"},
	}
}

// LoadTokens reads a YAML token file. Lists missing from the file keep
// their defaults; an absent field map keeps the licence layout.
func LoadTokens(path string) (*Tokens, error) {
	tokens := &Tokens{
		TokenLists: DefaultTokenLists(),
		FieldMap:   address.LicenseFieldMap,
	}
	if path == "" {
		return tokens, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var raw Tokens
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}

	if raw.TokenLists.District != nil {
		tokens.TokenLists.District = raw.TokenLists.District
	}
	if raw.TokenLists.City != nil {
		tokens.TokenLists.City = raw.TokenLists.City
	}
	if raw.TokenLists.Suburb != nil {
		tokens.TokenLists.Suburb = raw.TokenLists.Suburb
	}
	if raw.TokenLists.Unit != nil {
		tokens.TokenLists.Unit = raw.TokenLists.Unit
	}
	if len(raw.FieldMap) > 0 {
		if err := raw.FieldMap.Validate(); err != nil {
			return nil, fmt.Errorf("invalid field map in %s: %w", path, err)
		}
		tokens.FieldMap = raw.FieldMap
	}

	if err := tokens.TokenLists.Validate(); err != nil {
		return nil, fmt.Errorf("invalid token lists in %s: %w", path, err)
	}

	return tokens, nil
}

// LoadTokensFromEnv loads the file named by RU_ADDR_TOKENS, or the defaults
func LoadTokensFromEnv() (*Tokens, error) {
	return LoadTokens(GetEnv("RU_ADDR_TOKENS", ""))
}

// Validate rejects empty tokens, which would match every segment
func (t TokenLists) Validate() error {
	lists := map[string][]string{
		"district": t.District,
		"city":     t.City,
		"suburb":   t.Suburb,
		"unit":     t.Unit,
	}
	for name, list := range lists {
		for i, tok := range list {
			if tok == "" {
				return fmt.Errorf("%s token %d is empty", name, i)
			}
		}
	}
	return nil
}

// Marshal renders the configuration back to YAML
func (t *Tokens) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}
