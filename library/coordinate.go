// Package library materializes a merged spec's dependency list: it
// fetches every included library, builds the classpath in manifest
// order and extracts platform natives.
package library

import (
	"fmt"
	"path"
	"strings"
)

// Coordinate is a maven-style group:artifact:version(:classifier)
// tuple. A coordinate uniquely determines its repository-relative path.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

// ParseCoordinate parses "group:artifact:version[:classifier]".
func ParseCoordinate(name string) (Coordinate, error) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinate{}, fmt.Errorf("malformed library coordinate %q", name)
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	if len(parts) > 3 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// WithClassifier returns a copy of the coordinate carrying the given
// classifier.
func (c Coordinate) WithClassifier(classifier string) Coordinate {
	c.Classifier = classifier
	return c
}

// Filename is the jar file name for the coordinate.
func (c Coordinate) Filename() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s-%s-%s.jar", c.Artifact, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s-%s.jar", c.Artifact, c.Version)
}

// RelPath is the repository-relative location:
// group/path/artifact/version/artifact-version[-classifier].jar.
func (c Coordinate) RelPath() string {
	return path.Join(
		strings.ReplaceAll(c.Group, ".", "/"),
		c.Artifact,
		c.Version,
		c.Filename(),
	)
}

func (c Coordinate) String() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s:%s:%s:%s", c.Group, c.Artifact, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s:%s:%s", c.Group, c.Artifact, c.Version)
}
