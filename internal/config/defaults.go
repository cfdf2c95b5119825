package config

const (
	defaultOutputDir        = "dist"
	defaultWorkspaceDir     = "temp"
	defaultArchiveName      = "auth0-ai-admin-assistant.zip"
	defaultSidecarName      = "extension.json"
	defaultStateDir         = ".extpack"
	defaultExtensionName    = "Auth0 AI Admin Assistant"
	defaultManifest         = "auth0-manifest.json"
	defaultEntryPoint       = "webtask.js"
	defaultRuntimeManifest  = "webtask.json"
	defaultAppEntry         = "index.js"
	defaultAppModule        = "auth0-ai-admin"
	defaultInitModule       = "auth0-init"
	defaultMountPath        = "/"
	defaultPageTemplate     = "auth0-frontend.html"
	defaultPageTarget       = "public/index.html"
	defaultLicenseSource    = "LICENSE"
	defaultLicenseTarget    = "LICENSE"
	defaultLicenseHolder    = "Your Name"
	defaultCompressionLevel = 9
	defaultMinFreeMiB       = 16
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// DefaultFiles returns the built-in source file set. auth0-config.js is
// renamed to config.js; everything else keeps its name.
func DefaultFiles() []File {
	return []File{
		{Source: "auth0-ai-admin.js", Target: "auth0-ai-admin.js"},
		{Source: "auth0-config.js", Target: "config.js"},
		{Source: "auth0-init.js", Target: "auth0-init.js"},
		{Source: "package.json", Target: "package.json"},
		{Source: "README.md", Target: "README.md"},
	}
}

// Default returns a Config populated with the built-in project layout.
// Paths are left relative; Load resolves them against the project root.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			WorkspaceDir: defaultWorkspaceDir,
			ArchiveName:  defaultArchiveName,
			SidecarName:  defaultSidecarName,
			StateDir:     defaultStateDir,
		},
		Extension: Extension{
			Name:            defaultExtensionName,
			Manifest:        defaultManifest,
			EntryPoint:      defaultEntryPoint,
			RuntimeManifest: defaultRuntimeManifest,
			AppEntry:        defaultAppEntry,
			AppModule:       defaultAppModule,
			InitModule:      defaultInitModule,
			MountPath:       defaultMountPath,
		},
		Page: Page{
			Template: defaultPageTemplate,
			Target:   defaultPageTarget,
		},
		Files: DefaultFiles(),
		License: License{
			Source: defaultLicenseSource,
			Target: defaultLicenseTarget,
			Holder: defaultLicenseHolder,
		},
		Archive: Archive{
			CompressionLevel: defaultCompressionLevel,
		},
		Preflight: Preflight{
			Enabled:    true,
			MinFreeMiB: defaultMinFreeMiB,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
