package manifest

// Merge overlays a child spec onto its resolved parent and returns a
// new spec. Precedence, field by field:
//
//   - id, type, loader: child
//   - mainClass: child when set, else parent
//   - libraries: parent's followed by the child's
//   - jvm/game argument templates: parent's followed by the child's
//   - minecraftArguments: child when set, else parent
//   - downloads, assetIndex, javaVersion: child when present, else parent
//
// The result carries no inheritsFrom; resolution has bottomed out by the
// time Merge runs. Neither input is mutated.
func Merge(parent, child *VersionSpec) *VersionSpec {
	merged := *parent
	merged.ID = child.ID
	merged.InheritsFrom = ""
	if child.Type != "" {
		merged.Type = child.Type
	}
	if child.Loader != "" {
		merged.Loader = child.Loader
	}
	if child.MainClass != "" {
		merged.MainClass = child.MainClass
	}

	libs := make([]Library, 0, len(parent.Libraries)+len(child.Libraries))
	libs = append(libs, parent.Libraries...)
	libs = append(libs, child.Libraries...)
	merged.Libraries = libs

	merged.Arguments = mergeArguments(parent.Arguments, child.Arguments)
	if child.MinecraftArguments != "" {
		merged.MinecraftArguments = child.MinecraftArguments
	}
	if child.Downloads != nil {
		merged.Downloads = child.Downloads
	}
	if child.AssetIndex != nil {
		merged.AssetIndex = child.AssetIndex
	}
	if child.JavaVersion != nil {
		merged.JavaVersion = child.JavaVersion
	}
	return &merged
}

func mergeArguments(parent, child *Arguments) *Arguments {
	if parent == nil && child == nil {
		return nil
	}
	merged := &Arguments{}
	if parent != nil {
		merged.JVM = append(merged.JVM, parent.JVM...)
		merged.Game = append(merged.Game, parent.Game...)
	}
	if child != nil {
		merged.JVM = append(merged.JVM, child.JVM...)
		merged.Game = append(merged.Game, child.Game...)
	}
	return merged
}
