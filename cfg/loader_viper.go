package cfg

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	cfgIns     *Config
	cfgInsOnce sync.Once
	cfgMutex   sync.RWMutex
)

type ViperLoader struct {
	configChangeCallbacks []func(*Config)
}

func NewViperLoader() (*ViperLoader, error) {
	return &ViperLoader{
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func (vl *ViperLoader) Load() (*Config, error) {
	var err error
	cfgInsOnce.Do(func() {
		err = vl.loadConfig()
		if err == nil && vl.IsWatchChange() {
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := vl.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
		}
	})

	if err != nil {
		return nil, err
	}

	cfgMutex.RLock()
	defer cfgMutex.RUnlock()
	return cfgIns, nil
}

func (vl *ViperLoader) IsWatchChange() bool {
	return true
}

func (vl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	cfgMutex.Lock()
	vl.configChangeCallbacks = append(vl.configChangeCallbacks, callback)
	cfgMutex.Unlock()
}

func (vl *ViperLoader) loadConfig() error {
	viper.AddConfigPath("cfg/yaml")
	viper.SetConfigName("downloader")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
	}

	// Unmarshal into the config
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}

	// Assign to the global
	cfgMutex.Lock()
	cfgIns = cfg
	cfgMutex.Unlock()

	return nil
}

func (vl *ViperLoader) reloadConfig() error {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config during reload: %w", err)
	}

	// Update the global instance
	cfgMutex.Lock()
	cfgIns = cfg

	// Notify all registered callbacks
	callbacks := make([]func(*Config), len(vl.configChangeCallbacks))
	copy(callbacks, vl.configChangeCallbacks)
	cfgMutex.Unlock()
	for _, callback := range callbacks {
		go callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}
