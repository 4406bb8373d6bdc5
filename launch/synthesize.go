package launch

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/Strange-Account/go-mc-launcher/manifest"
)

var ErrNoMainClass = errors.New("merged spec has no main class")

// Invocation is the fully synthesized process start request handed to
// the spawning collaborator.
type Invocation struct {
	Executable string
	Argv       []string
	Dir        string
}

func (inv *Invocation) String() string {
	return inv.Executable + " " + strings.Join(inv.Argv, " ")
}

// Synthesizer renders the argument lists for one launch request.
type Synthesizer struct {
	Java       string          // runtime executable path
	MemoryGB   int             // both min and max heap bound
	ExtraFlags []string        // caller-supplied interpreter flags, first in argv
	OS         string          // rule-evaluation OS name, defaults to the running platform
	Features   map[string]bool // active launch features, usually nil
	Separator  string          // classpath separator, defaults to the platform's
}

// Synthesize builds the invocation:
// interpreter flags, memory bounds, native library path, loader flags,
// rendered jvm templates, classpath, main class, rendered game
// templates. Both the structured and the flat legacy game argument
// formats are supported.
func (sz *Synthesizer) Synthesize(spec *manifest.VersionSpec, classpath []string, nativesDir string, ph Placeholders) (*Invocation, error) {
	if spec.MainClass == "" {
		return nil, ErrNoMainClass
	}

	cp := strings.Join(classpath, sz.separator())
	rendered := make(Placeholders, len(ph)+2)
	for k, v := range ph {
		rendered[k] = v
	}
	rendered[TokenClasspath] = cp
	if _, ok := rendered[TokenNativesDir]; !ok {
		rendered[TokenNativesDir] = nativesDir
	}

	argv := append([]string{}, sz.ExtraFlags...)
	argv = append(argv,
		fmt.Sprintf("-Xms%dG", sz.MemoryGB),
		fmt.Sprintf("-Xmx%dG", sz.MemoryGB),
		"-Djava.library.path="+nativesDir,
	)
	argv = append(argv, loaderFlags(spec.Loader)...)

	if spec.Arguments != nil {
		jvm, err := sz.expandAll(spec.Arguments.JVM, rendered)
		if err != nil {
			return nil, err
		}
		argv = append(argv, jvm...)
	}

	argv = append(argv, "-cp", cp, spec.MainClass)

	switch {
	case spec.MinecraftArguments != "":
		argv = append(argv, splitLegacy(spec.MinecraftArguments, rendered)...)
	case spec.Arguments != nil:
		game, err := sz.expandAll(spec.Arguments.Game, rendered)
		if err != nil {
			return nil, err
		}
		argv = append(argv, game...)
	}

	return &Invocation{Executable: sz.Java, Argv: argv}, nil
}

func (sz *Synthesizer) separator() string {
	if sz.Separator != "" {
		return sz.Separator
	}
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

func (sz *Synthesizer) osName() string {
	if sz.OS != "" {
		return sz.OS
	}
	return manifest.CurrentOS()
}

func loaderFlags(loader string) []string {
	switch loader {
	case manifest.LoaderForge:
		return []string{"-Dforge.logging.markers=SCAN,REGISTRIES,REGISTRYDUMP"}
	case manifest.LoaderFabric:
		return []string{"-Dfabric.launcher=true"}
	}
	return nil
}
