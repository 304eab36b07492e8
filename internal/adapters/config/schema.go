package config

// Configfile represents the structure of the optimize.yaml configuration file.
// Pointer fields distinguish "unset" from the zero value.
type Configfile struct {
	Version           string         `yaml:"version"`
	Concurrency       *int           `yaml:"concurrency"`
	SourceMap         *bool          `yaml:"sourceMap"`
	Minify            *bool          `yaml:"minify"`
	Downlevel         *bool          `yaml:"downlevel"`
	Verbose           *bool          `yaml:"verbose"`
	PolyfillsFilename string         `yaml:"polyfillsFilename"`
	Extensions        []string       `yaml:"extensions"`
	IdleTimeout       string         `yaml:"idleTimeout"`
	Dequeue           string         `yaml:"dequeue"`
	Executor          ExecutorDTO    `yaml:"executor"`
	Transformer       TransformerDTO `yaml:"transformer"`
	Shims             ShimsDTO       `yaml:"shims"`
}

// ExecutorDTO configures the executor variant.
type ExecutorDTO struct {
	Kind   string `yaml:"kind"`
	Module string `yaml:"module"`
}

// TransformerDTO configures the transformation collaborator.
type TransformerDTO struct {
	Kind    string   `yaml:"kind"`
	Command []string `yaml:"command"`
}

// ShimsDTO configures shim resolution.
type ShimsDTO struct {
	Root string `yaml:"root"`
}
