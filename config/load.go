package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the YAML key of every field when the
// configuration is read from the environment, e.g. CACHESIM_L1_ENTRIES.
const EnvPrefix = "CACHESIM_"

// Load reads a YAML file. Keys that are absent keep their default values.
// The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	c := Default()

	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w",
			path, err)
	}

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// LoadDotEnv loads variables from the given dotenv files into the process
// environment. Files that do not exist are skipped. Variables that are
// already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))

	for _, p := range paths {
		_, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return err
		}

		existing = append(existing, p)
	}

	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

// ApplyEnv overrides the fields of c with CACHESIM_* variables returned by
// lookup. Pass os.LookupEnv to read the process environment.
func ApplyEnv(
	c Config,
	lookup func(key string) (string, bool),
) (Config, error) {
	ints := []struct {
		key string
		dst *int
	}{
		{"L1_ENTRIES", &c.L1Entries},
		{"L2_ENTRIES", &c.L2Entries},
		{"WORD_SIZE", &c.WordSize},
		{"WORDS_PER_LINE", &c.WordsPerLine},
		{"L1_ASSOCIATIVITY", &c.L1Associativity},
		{"L2_ASSOCIATIVITY", &c.L2Associativity},
		{"L1_COST", &c.L1Cost},
		{"L2_COST", &c.L2Cost},
		{"MEMORY_COST", &c.MemoryCost},
	}

	for _, f := range ints {
		s, ok := lookup(EnvPrefix + f.key)
		if !ok {
			continue
		}

		v, err := strconv.Atoi(s)
		if err != nil {
			return c, fmt.Errorf("%s%s: %w", EnvPrefix, f.key, err)
		}

		*f.dst = v
	}

	if s, ok := lookup(EnvPrefix + "ADDRESS_SPACE_SIZE"); ok {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return c, fmt.Errorf("%sADDRESS_SPACE_SIZE: %w", EnvPrefix, err)
		}

		c.AddressSpaceSize = v
	}

	return c, c.Validate()
}
