package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/repotag/internal/changeset"
	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/metrics"
	"git.home.luguber.info/inful/repotag/internal/registry"
	"git.home.luguber.info/inful/repotag/internal/structure"
	"git.home.luguber.info/inful/repotag/internal/tags"
	"git.home.luguber.info/inful/repotag/internal/util/sets"
)

// Classifier supplies structural classification for a path.
type Classifier interface {
	ModuleInfo(repo, path, version string) (structure.ModuleInfo, bool)
}

// RegistryLookup finds the registry of a repository.
type RegistryLookup interface {
	Lookup(repoURL string) *registry.Registry
}

// Processor tags change sets. Either collaborator may be nil.
type Processor struct {
	classifier Classifier
	registries RegistryLookup
	evaluator  *Evaluator
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithEvaluator replaces the default evaluator.
func WithEvaluator(e *Evaluator) Option {
	return func(p *Processor) {
		if e != nil {
			p.evaluator = e
		}
	}
}

// NewProcessor returns a Processor over classifier and registries.
func NewProcessor(classifier Classifier, registries RegistryLookup, opts ...Option) *Processor {
	p := &Processor{
		classifier: classifier,
		registries: registries,
		logger:     slog.Default(),
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.evaluator == nil {
		p.evaluator = NewEvaluator(nil)
	}
	return p
}

// Process tags every file of cs. Malformed file entries yield a default
// FileTag and never abort the change set.
func (p *Processor) Process(ctx context.Context, cs *changeset.ChangeSet) (*Result, error) {
	if cs == nil {
		return nil, fmt.Errorf("nil change set")
	}
	repoURL := cs.Repository.CloneURL
	version := cs.EffectiveVersion()
	res := newResult()
	res.RepoType = cs.Repository.RepoType
	res.RepoVersion = version

	var reg *registry.Registry
	if p.registries != nil {
		reg = p.registries.Lookup(repoURL)
	}
	if reg == nil {
		p.logger.Debug("No registry for repository", logfields.Repository(repoURL))
	}

	for i, f := range cs.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.Filename == "" {
			p.logger.Warn("Skipping change without filename", slog.Int("index", i))
			continue
		}
		tag, modules := p.tagFile(repoURL, version, reg, f)
		for _, t := range tag.HierarchicalTags {
			res.addToHierarchy(f.Filename, t)
		}
		for _, category := range modules {
			res.addModule(category, tag.ModuleName)
		}
		if _, seen := res.Files[f.Filename]; !seen {
			res.Order = append(res.Order, f.Filename)
		}
		res.Files[f.Filename] = tag
		p.recorder.IncFilesTagged(tag.Impact.String())
	}

	p.summarize(res)
	return res, nil
}

// tagFile builds the FileTag for f and names the categories whose affected
// module lists gain its module name. A panic while tagging degrades to the
// default tag for that file with no result contributions.
func (p *Processor) tagFile(repoURL, version string, reg *registry.Registry, f changeset.FileChange) (tag *FileTag, modules []string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Tagging failed, using default tag",
				logfields.Path(f.Filename),
				slog.Any("panic", r))
			tag, modules = newFileTag(f.Filename), nil
		}
	}()

	tag = newFileTag(f.Filename)
	if f.Status == "" {
		f.Status = changeset.StatusModified
	}
	if !f.Status.Valid() {
		p.logger.Warn("Unknown file status, using default tag",
			logfields.Path(f.Filename),
			slog.String("status", string(f.Status)))
		return tag, nil
	}
	tag.IsNewFile = f.Status == changeset.StatusAdded

	if p.classifier != nil {
		if info, ok := p.classifier.ModuleInfo(repoURL, f.Filename, version); ok {
			tag.ModuleCategories = append(tag.ModuleCategories, info.Categories...)
			tag.ModuleName = info.ModuleName
			tag.IsCore, tag.IsTest, tag.IsDoc = info.IsCore, info.IsTest, info.IsDoc
			if info.ModuleName != "" {
				modules = info.Categories
			}
		}
	}

	if reg != nil {
		matches := p.evaluator.Evaluate(f.Filename, reg.Patterns, f.Status)
		labels := sets.NewOrdered[string]()
		for _, m := range matches {
			if !m.Tag.IsZero() {
				tag.addTag(m.Tag)
			}
			for _, l := range m.Pattern.Tags {
				labels.Add(l)
			}
			// only one category is inferred, and only without a structural one
			if len(tag.ModuleCategories) > 0 {
				continue
			}
			if ref := ExtractModuleInfo(f.Filename, m.Pattern); ref.Type != "" {
				tag.ModuleCategories = append(tag.ModuleCategories, ref.Type)
				if tag.ModuleName == "" {
					tag.ModuleName = ref.Name
				}
			}
		}
		if labels.Len() > 0 {
			tag.Labels = labels.Items()
		}
		tag.Impact = DetermineImpact(matches, f.Status)
	}

	return tag, modules
}

func (p *Processor) summarize(res *Result) {
	tagSet := sets.New[string]()
	hier := sets.NewOrdered[tags.HierarchicalTag]()
	categories := sets.New[string]()
	stats := Stats{
		TotalFiles:        len(res.Files),
		FilesByImpact:     make(map[string]int, len(tags.Levels)),
		FilesByPrimaryTag: map[string]int{},
	}
	for _, l := range tags.Levels {
		stats.FilesByImpact[l.String()] = 0
	}

	impacts := make([]tags.ImpactLevel, 0, len(res.Files))
	for _, path := range res.Order {
		ft := res.Files[path]
		tagSet.AddAll(ft.Tags...)
		for _, ht := range ft.HierarchicalTags {
			hier.Add(ht)
		}
		categories.AddAll(ft.ModuleCategories...)
		impacts = append(impacts, ft.Impact)

		stats.FilesByImpact[ft.Impact.String()]++
		if ft.IsNewFile {
			stats.NewFiles++
		}
		if ft.IsCore {
			stats.CoreFiles++
		}
		if ft.IsTest {
			stats.TestFiles++
		}
		if ft.IsDoc {
			stats.DocFiles++
		}
		primaries := sets.New[string]()
		for _, ht := range ft.HierarchicalTags {
			primaries.Add(ht.Primary)
		}
		for primary := range primaries {
			stats.FilesByPrimaryTag[primary]++
		}
	}
	for _, names := range res.AffectedModules {
		stats.ModuleCount += len(names)
	}

	res.Tags = sets.Sorted(tagSet)
	res.HierarchicalTags = append([]tags.HierarchicalTag{}, hier.Items()...)
	res.ModuleCategories = sets.Sorted(categories)
	if level := tags.Max(impacts...); level != tags.ImpactUnset {
		res.Impact = level
	}
	res.Stats = stats
}
