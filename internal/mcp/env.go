package mcp

import "os"

// LookupFunc resolves an environment variable. It matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ExpandEnv returns a copy of the config in which ${VAR} and $VAR
// references inside env values are replaced using lookup. Unset variables
// expand to the empty string. A nil lookup uses os.LookupEnv.
func (c *Config) ExpandEnv(lookup LookupFunc) *Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	mapping := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	out := NewConfig()
	for name, s := range c.Servers {
		clone := s.Clone()
		if clone != nil {
			for k, v := range clone.Env {
				clone.Env[k] = os.Expand(v, mapping)
			}
		}
		out.Servers[name] = clone
	}
	return out
}

// UnresolvedEnv reports, per server, env references that lookup cannot
// resolve. The result is keyed by server name.
func (c *Config) UnresolvedEnv(lookup LookupFunc) map[string][]string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	missing := make(map[string][]string)
	for _, name := range c.Names() {
		s := c.Servers[name]
		if s == nil {
			continue
		}
		for _, key := range sortedKeys(s.Env) {
			os.Expand(s.Env[key], func(ref string) string {
				if _, ok := lookup(ref); !ok {
					missing[name] = append(missing[name], ref)
				}
				return ""
			})
		}
	}
	return missing
}
