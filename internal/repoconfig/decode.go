package repoconfig

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/pattern"
	"git.home.luguber.info/inful/repotag/internal/version"
)

// Document shapes as they appear on disk, after legacy normalization.

type patternDoc struct {
	Pattern         string   `mapstructure:"pattern" validate:"required"`
	Type            string   `mapstructure:"type" validate:"omitempty,oneof=suffix prefix glob regex directory"`
	NameExtraction  string   `mapstructure:"name_extraction"`
	ExcludePatterns []string `mapstructure:"exclude_patterns"`
}

type categoryDoc struct {
	Name              string       `mapstructure:"name"`
	DisplayName       string       `mapstructure:"display_name"`
	Paths             []string     `mapstructure:"paths"`
	Patterns          []patternDoc `mapstructure:"patterns" validate:"dive"`
	DetectionStrategy string       `mapstructure:"detection_strategy" validate:"omitempty,oneof=filename_pattern directory_based metadata_file hybrid"`
	MetadataField     string       `mapstructure:"metadata_field"`
	MetadataValue     string       `mapstructure:"metadata_value"`
}

type versionDoc struct {
	Version          string                 `mapstructure:"version"`
	VersionRange     string                 `mapstructure:"version_range"`
	ModuleCategories map[string]categoryDoc `mapstructure:"module_categories" validate:"dive"`
	MetadataPath     string                 `mapstructure:"metadata_path"`
	MetadataPattern  string                 `mapstructure:"metadata_pattern"`
	Notes            string                 `mapstructure:"notes"`
}

type pathsDoc struct {
	Core    []string `mapstructure:"core"`
	Test    []string `mapstructure:"test"`
	Docs    []string `mapstructure:"docs"`
	Exclude []string `mapstructure:"exclude"`
}

type relationshipDoc struct {
	Type        string `mapstructure:"type" validate:"required"`
	Target      string `mapstructure:"target" validate:"required"`
	Description string `mapstructure:"description"`
}

type repositoryDoc struct {
	RepoName          string                 `mapstructure:"repo_name" validate:"required"`
	RepoType          string                 `mapstructure:"repo_type" validate:"required"`
	Description       string                 `mapstructure:"description"`
	Extends           string                 `mapstructure:"extends"`
	DetectionStrategy string                 `mapstructure:"detection_strategy" validate:"omitempty,oneof=filename_pattern directory_based metadata_file hybrid"`
	FetchStrategy     string                 `mapstructure:"fetch_strategy" validate:"omitempty,oneof=full_content filenames_only directory_names"`
	ModuleCategories  map[string]categoryDoc `mapstructure:"module_categories" validate:"dive"`
	VersionOverrides  map[string]versionDoc  `mapstructure:"version_overrides" validate:"dive"`
	VersionConfigs    []versionDoc           `mapstructure:"version_configs" validate:"dive"`
	DefaultVersion    string                 `mapstructure:"default_version"`
	Paths             pathsDoc               `mapstructure:"paths"`
	Relationships     []relationshipDoc      `mapstructure:"relationships" validate:"dive"`
	Metadata          map[string]any         `mapstructure:"metadata"`
}

var documentValidate = newDocumentValidator()

func newDocumentValidator() *validator.Validate {
	v := validator.New()
	// Report document field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decodeDocument(data map[string]any) (*repositoryDoc, error) {
	var doc repositoryDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validationIssues flattens validator errors into readable lines.
func validationIssues(doc *repositoryDoc) []string {
	err := documentValidate.Struct(doc)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "repositoryDoc.")
		if fe.Param() != "" {
			issues = append(issues, fmt.Sprintf("%s: must satisfy %s=%s, got %q", field, fe.Tag(), fe.Param(), fmt.Sprint(fe.Value())))
		} else {
			issues = append(issues, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return issues
}

// structureBuilder converts decoded documents into RepositoryStructures.
type structureBuilder struct {
	logger *slog.Logger
	source string
}

func (b *structureBuilder) build(doc *repositoryDoc, order keyOrder) *RepositoryStructure {
	repo := &RepositoryStructure{
		RepoName:          doc.RepoName,
		RepoType:          doc.RepoType,
		Description:       doc.Description,
		DetectionStrategy: detectionOrDefault(doc.DetectionStrategy),
		FetchStrategy:     FetchFilenamesOnly,
		DefaultVersion:    doc.DefaultVersion,
		CorePaths:         doc.Paths.Core,
		TestPaths:         doc.Paths.Test,
		DocPaths:          doc.Paths.Docs,
		ExcludePaths:      doc.Paths.Exclude,
		Metadata:          doc.Metadata,
		Source:            b.source,
	}
	if isOneOf(doc.FetchStrategy, string(FetchFullContent), string(FetchFilenamesOnly), string(FetchDirectoryNames)) {
		repo.FetchStrategy = FetchStrategy(doc.FetchStrategy)
	}
	repo.ModuleCategories = b.categories(doc.ModuleCategories, order.keys("module_categories"))

	if len(doc.VersionOverrides) > 0 {
		for _, key := range orderedKeys(doc.VersionOverrides, order.keys("version_overrides")) {
			vd := doc.VersionOverrides[key]
			label, rng := version.ExtractVersionAndRange(key)
			if vd.VersionRange != "" {
				rng = vd.VersionRange
			}
			repo.VersionConfigs = append(repo.VersionConfigs, VersionConfig{
				Version:          label,
				VersionRange:     rng,
				ModuleCategories: b.categories(vd.ModuleCategories, order.keys("version_overrides", key, "module_categories")),
				MetadataPath:     vd.MetadataPath,
				MetadataPattern:  vd.MetadataPattern,
				Notes:            vd.Notes,
			})
		}
	} else {
		for _, vd := range doc.VersionConfigs {
			repo.VersionConfigs = append(repo.VersionConfigs, VersionConfig{
				Version:          vd.Version,
				VersionRange:     vd.VersionRange,
				ModuleCategories: b.categories(vd.ModuleCategories, nil),
				MetadataPath:     vd.MetadataPath,
				MetadataPattern:  vd.MetadataPattern,
				Notes:            vd.Notes,
			})
		}
	}

	for _, rd := range doc.Relationships {
		repo.Relationships = append(repo.Relationships, RepositoryRelationship{
			Type:        rd.Type,
			Target:      rd.Target,
			Description: rd.Description,
		})
	}
	return repo
}

func (b *structureBuilder) categories(docs map[string]categoryDoc, hint []string) Categories {
	out := NewCategories()
	for _, key := range orderedKeys(docs, hint) {
		cd := docs[key]
		cat := &ModuleCategory{
			Name:              key,
			DisplayName:       cd.DisplayName,
			Paths:             cd.Paths,
			DetectionStrategy: detectionOrDefault(cd.DetectionStrategy),
			MetadataField:     cd.MetadataField,
			MetadataValue:     cd.MetadataValue,
		}
		if cd.Name != "" {
			cat.Name = cd.Name
		}
		for _, pd := range cd.Patterns {
			d, err := pattern.ParseDialect(pd.Type)
			if err != nil {
				// strict mode has already rejected the document
				b.logger.Warn("Dropping pattern with unknown type",
					logfields.ConfigPath(b.source),
					logfields.Category(key),
					logfields.Pattern(pd.Pattern),
					logfields.Error(err))
				continue
			}
			cat.Patterns = append(cat.Patterns, ModulePattern{
				Pattern:         pd.Pattern,
				Type:            d,
				NameExtraction:  pd.NameExtraction,
				ExcludePatterns: pd.ExcludePatterns,
			})
		}
		out.Set(cat)
	}
	return out
}

func detectionOrDefault(s string) DetectionStrategy {
	if isOneOf(s, string(DetectionFilenamePattern), string(DetectionDirectoryBased), string(DetectionMetadataFile), string(DetectionHybrid)) {
		return DetectionStrategy(s)
	}
	return DetectionFilenamePattern
}

func isOneOf(s string, vals ...string) bool { return slices.Contains(vals, s) }
