package config

import (
	"sync"
)

// Provider hands out the current configuration.
// Provider 提供当前配置。
type Provider interface {
	Get() *Config
}

// Manager owns the live configuration and its file.
// Manager 管理运行中的配置及其文件。
type Manager struct {
	path   string
	mutex  sync.RWMutex
	config *Config
}

// NewManager creates a manager for path. Call Load before Get.
// NewManager 为指定路径创建配置管理器，使用 Get 前需先调用 Load。
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultConfigPath
	}
	return &Manager{path: path}
}

// NewManagerWith wraps an already loaded configuration.
func NewManagerWith(path string, cfg *Config) *Manager {
	m := NewManager(path)
	m.config = cfg.Clone()
	return m
}

// Load reads the file, creating it with defaults when missing.
// Load 读取配置文件，不存在时以默认值创建。
func (m *Manager) Load() (created bool, err error) {
	cfg, created, err := LoadOrCreate(m.path)
	if err != nil {
		return false, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.config = cfg
	return created, nil
}

// Save writes the current configuration to the file.
// Save 将当前配置写入文件。
func (m *Manager) Save() error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.config == nil {
		return nil
	}
	return Save(m.path, m.config)
}

// Get returns a copy of the current configuration.
// Get 返回当前配置的副本。
func (m *Manager) Get() *Config {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.config == nil {
		return Default()
	}
	return m.config.Clone()
}

// Update validates next, persists it, and makes it current.
// Update 校验、保存并替换当前配置。
func (m *Manager) Update(next *Config) error {
	next = next.Clone()
	next.normalize()
	if err := next.Validate(); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := Save(m.path, next); err != nil {
		return err
	}
	m.config = next
	return nil
}

// Path returns the configuration file path.
// Path 返回配置文件路径。
func (m *Manager) Path() string {
	return m.path
}
