package sources

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Sources maps a preset name to the documentation URLs it covers.
type Sources map[string][]string

// Default returns the built-in documentation presets.
func Default() Sources {
	return Sources{
		"fastapi": {
			"https://fastapi.tiangolo.com/",
			"https://fastapi.tiangolo.com/tutorial/",
			"https://fastapi.tiangolo.com/advanced/",
		},
		"langchain": {
			"https://python.langchain.com/docs/get_started/introduction",
			"https://python.langchain.com/docs/modules/model_io/",
		},
		"pydantic": {
			"https://docs.pydantic.dev/latest/",
			"https://docs.pydantic.dev/latest/concepts/models/",
		},
	}
}

// Load returns the default presets, overlaid with entries from an optional
// yaml file. An empty path keeps the defaults.
func Load(path string) (Sources, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fileSources Sources
	if err := yaml.Unmarshal(data, &fileSources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %v", path, err)
	}
	for name, urls := range fileSources {
		s[name] = urls
	}
	return s, nil
}

// Names returns the preset names in stable order.
func (s Sources) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllURLs flattens every preset into one URL list, preset order stable.
func (s Sources) AllURLs() []string {
	var urls []string
	for _, name := range s.Names() {
		urls = append(urls, s[name]...)
	}
	return urls
}
