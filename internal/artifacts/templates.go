package artifacts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// AppSpec names the modules wired together by the composed application file.
type AppSpec struct {
	Title      string
	AppModule  string
	InitModule string
	MountPath  string
}

var appTemplate = template.Must(template.New("app").Parse(`{{with .Title}}// {{.}} Extension
{{end}}const app = require('./{{.AppModule}}');
const initRoutes = require('./{{.InitModule}}');

// Mount the initialization routes
app.use('{{.MountPath}}', initRoutes);

module.exports = app;
`))

// EntryPoint returns the wrapper module that re-exports the composed
// application under the file name the host runtime loads.
func EntryPoint(appEntry string) string {
	return fmt.Sprintf("module.exports = require('./%s');", moduleName(appEntry))
}

// ComposeApp renders the application entry file that attaches the
// initialization module to the core application object.
func ComposeApp(spec AppSpec) (string, error) {
	for name, value := range map[string]string{
		"app module":  spec.AppModule,
		"init module": spec.InitModule,
		"mount path":  spec.MountPath,
	} {
		if value == "" {
			return "", fmt.Errorf("%s must be set", name)
		}
		if strings.ContainsAny(value, "'\\\n\r") {
			return "", fmt.Errorf("%s %q contains characters that cannot appear in a module string", name, value)
		}
	}
	if strings.ContainsAny(spec.Title, "\n\r") {
		return "", fmt.Errorf("title %q must be a single line", spec.Title)
	}
	spec.Title = strings.TrimSpace(spec.Title)

	var buf bytes.Buffer
	if err := appTemplate.Execute(&buf, spec); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// DefaultLicense returns the MIT license text for year and holder.
func DefaultLicense(year int, holder string) string {
	if strings.TrimSpace(holder) == "" {
		holder = "The Authors"
	}
	return fmt.Sprintf(mitLicense, year, holder)
}

// moduleName strips the .js extension so require() resolves the module the
// same way the runtime does.
func moduleName(file string) string {
	return strings.TrimSuffix(strings.TrimPrefix(file, "./"), ".js")
}

const mitLicense = `MIT License

Copyright (c) %d %s

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.`
