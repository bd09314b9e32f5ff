package constants

const (
	Version        = `0.1.0`
	AppName        = `jottr`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `.jottr`
	EnvPrefix      = `JOTTR`
	DefaultVault   = `jottr`
)
