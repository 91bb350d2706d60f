package mkconv

import (
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/base"
	"git.fractalqb.de/fractalqb/mkconv/plugin/coredeps"
	"git.fractalqb.de/fractalqb/mkconv/plugin/java"
	"git.fractalqb.de/fractalqb/mkconv/plugin/license"
	"git.fractalqb.de/fractalqb/mkconv/plugin/remapper"
)

const (
	MappingLogicID = "mapping-logic"

	MappingsProject       = ":mappings:shared"
	LanguageVersion       = 17
	Classifier            = "remapped"
	RemappedConfiguration = "remapped"
)

// MappingLogic is the convention for library projects that publish a
// remapped archive next to their primary archive. The hooks apply the
// conventions it builds on. A nil hook means the convention is not
// available.
type MappingLogic struct {
	Java     func(*Project) (*java.Extension, error)
	License  func(*Project) (*license.Extension, error)
	CoreDeps func(*Project) (*coredeps.Extension, error)
	Remapper func(*Project) (*remapper.RemapTask, error)
}

var DefaultMappingLogic = MappingLogic{
	Java:     java.Apply,
	License:  license.Apply,
	CoreDeps: coredeps.Apply,
	Remapper: remapper.Apply,
}

// Remapped gives typed access to what the mapping-logic convention set up.
type Remapped struct {
	Java     *java.Extension
	Remap    *remapper.RemapTask
	Mappings *mkore.ProjectDependency

	// Configuration offers the remapped archive to other projects
	Configuration *Configuration
	Artifact      *mkore.PublishArtifact
}

// ApplyMappingLogic applies [DefaultMappingLogic] to prj.
func ApplyMappingLogic(prj *Project) (*Remapped, error) {
	return DefaultMappingLogic.Apply(prj)
}

// Apply applies the convention to prj. Applying it again to the same project
// returns the result of the first application. The project must not be
// locked by [Edit].
func (ml MappingLogic) Apply(prj *Project) (*Remapped, error) {
	return mkore.Apply(prj, MappingLogicID, ml.apply)
}

func (ml MappingLogic) apply(prj *Project) (res *Remapped, err error) {
	defer recoverEd(&err)
	ed := ProjectEd{prj}
	res = new(Remapped)

	if ml.Java != nil {
		res.Java = mustRet(ml.Java(prj))
	}
	if ml.License != nil {
		mustRet(ml.License(prj))
	}
	if ml.CoreDeps != nil {
		mustRet(ml.CoreDeps(prj))
	}
	if ml.Remapper != nil {
		res.Remap = mustRet(ml.Remapper(prj))
	} else {
		res.Remap = mustRet(remapper.Lookup(prj))
	}
	if res.Java == nil {
		res.Java = mustRet(java.Lookup(prj))
	}

	res.Mappings = ed.ProjectDependency(MappingsProject, "")
	ed.Configuration(java.Implementation).Add(res.Mappings)

	mustEd(res.Java.SetLanguageVersion(LanguageVersion))

	res.Remap.SetArchiveClassifier(Classifier)

	remap := res.Remap.Task()
	TaskEd{remap}.DependOn(ed.Task(java.Jar).Task())
	ed.Task(base.Build).DependOn(remap)

	remapped := ed.NewConfiguration(RemappedConfiguration).Usage(false, true)
	remapped.Configuration().Description = "Remapped archive of " + prj.Path()
	archive := mkore.PathFunc(res.Remap.ArchivePath)
	res.Artifact = remapped.Artifact(archive, remap)
	remapped.Add(mkore.FileDependency{
		FileCollection: ed.Files(archive).BuiltBy(remap),
	})
	res.Configuration = remapped.Configuration()

	prj.Build().Logger().Info("`project` publishes remapped `archive`",
		`project`, prj.Path(),
		`archive`, res.Artifact.Path(),
	)
	return res, nil
}
