package brig

// CSVBatchSizeKey configures the number of rows read per batch during
// local execution
const CSVBatchSizeKey = "brig.csv.batchSize"

// ConfigSetting describes one known configuration key and its default
type ConfigSetting struct {
	Key          string
	Description  string
	DefaultValue string
	HasDefault   bool
}

// Configs resolves configuration keys against user-supplied settings,
// falling back to a static catalog of defaults. Both tiers are
// immutable after construction.
type Configs struct {
	catalog  map[string]ConfigSetting
	settings map[string]string
}

// NewConfigs creates a resolver over the given settings. The catalog
// of known settings is data-driven: adding an entry here is all that
// is required to introduce a new defaulted key.
func NewConfigs(settings map[string]string) *Configs {
	catalog := []ConfigSetting{
		{
			Key:          CSVBatchSizeKey,
			Description:  "Number of rows to read per batch",
			DefaultValue: "1024",
			HasDefault:   true,
		},
	}
	m := make(map[string]ConfigSetting, len(catalog))
	for _, c := range catalog {
		m[c.Key] = c
	}
	return &Configs{catalog: m, settings: copySettings(settings)}
}

// GetSetting resolves a key: a user-supplied setting beats the
// catalog default, and a key absent from both yields no value
func (c *Configs) GetSetting(name string) (string, bool) {
	if v, ok := c.settings[name]; ok {
		return v, true
	}
	if s, ok := c.catalog[name]; ok && s.HasDefault {
		return s.DefaultValue, true
	}
	return "", false
}

// CSVBatchSize resolves the batch-size setting
func (c *Configs) CSVBatchSize() (string, bool) {
	return c.GetSetting(CSVBatchSizeKey)
}

func copySettings(settings map[string]string) map[string]string {
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		out[k] = v
	}
	return out
}
