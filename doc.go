// Package mkconv provides build conventions for multi-project Java builds
// that are described and executed with Go. A convention is a reusable recipe
// that is applied to a project of a [Build]. It registers tasks, declares
// dependencies and configures the plugins it builds on.
//
// The central convention is the mapping-logic convention, see [MappingLogic].
// Applied to a library project it
//
//   - compiles the project with the Java 17 toolchain,
//   - adds a dependency on the shared mappings project ":mappings:shared",
//   - remaps the primary archive to "<name>-<version>-remapped.jar" and
//   - offers the remapped archive to other projects with the configuration
//     "remapped".
//
// Build definitions can be written with [Edit], which turns the panics of
// the editor types into an error:
//
//	err := mkconv.Edit(prj, func(prj mkconv.ProjectEd) {
//		prj.Task("build").DependOn("remap")
//	})
//
// The build model itself lives in package [mkore]. The conventions the
// mapping-logic convention builds on are in the plugin packages.
package mkconv
