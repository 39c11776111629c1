package providerbase

import "github.com/burnwatch/burnwatch/internal/core"

// Base centralizes provider metadata. Provider packages embed this and
// implement only Fetch().
type Base struct {
	id   string
	info core.ProviderInfo
}

func New(id string, info core.ProviderInfo) Base {
	if id == "" {
		id = "unknown"
	}
	if info.Name == "" {
		info.Name = id
	}
	return Base{id: id, info: info}
}

func (b Base) ID() string {
	return b.id
}

func (b Base) Describe() core.ProviderInfo {
	return b.info
}
