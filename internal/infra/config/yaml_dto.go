package config

// FileName is the config file appserve looks for.
const FileName = "appserve.yaml"

type YAMLFile struct {
	Appserve YAMLConfig `yaml:"appserve"`
}

type YAMLConfig struct {
	Server  YAMLServer  `yaml:"server,omitempty"`
	Site    YAMLSite    `yaml:"site,omitempty"`
	TLS     YAMLTLS     `yaml:"tls,omitempty"`
	Metrics YAMLMetrics `yaml:"metrics,omitempty"`
	Log     YAMLLog     `yaml:"log,omitempty"`
}

type YAMLServer struct {
	Addr              string `yaml:"addr,omitempty"`
	ReadHeaderTimeout string `yaml:"read_header_timeout,omitempty"`
	ReadTimeout       string `yaml:"read_timeout,omitempty"`
	WriteTimeout      string `yaml:"write_timeout,omitempty"`
	IdleTimeout       string `yaml:"idle_timeout,omitempty"`
	ShutdownTimeout   string `yaml:"shutdown_timeout,omitempty"`
}

type YAMLSite struct {
	Root         string `yaml:"root,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
	Index        string `yaml:"index,omitempty"`
	HideDotfiles *bool  `yaml:"hide_dotfiles,omitempty"`
}

type YAMLTLS struct {
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
	CAFile   string `yaml:"ca_file,omitempty"`
}

type YAMLMetrics struct {
	Addr string `yaml:"addr,omitempty"`
}

type YAMLLog struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}
