package tagging

import (
	"git.home.luguber.info/inful/repotag/internal/tags"
)

// RootBucket collects files tagged with a primary level only.
const RootBucket = "_root"

// FileTag is the tagging outcome for one file.
type FileTag struct {
	Path             string                 `json:"filepath"`
	HierarchicalTags []tags.HierarchicalTag `json:"hierarchical_tags"`
	// Tags holds the string forms of HierarchicalTags, in the same order.
	Tags             []string         `json:"tags"`
	Labels           []string         `json:"labels,omitempty"`
	ModuleCategories []string         `json:"module_categories"`
	ModuleName       string           `json:"module_name,omitempty"`
	Impact           tags.ImpactLevel `json:"impact_level"`
	IsCore           bool             `json:"is_core"`
	IsTest           bool             `json:"is_test"`
	IsDoc            bool             `json:"is_doc"`
	IsNewFile        bool             `json:"is_new_file"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

func newFileTag(path string) *FileTag {
	return &FileTag{
		Path:             path,
		HierarchicalTags: []tags.HierarchicalTag{},
		Tags:             []string{},
		ModuleCategories: []string{},
		Impact:           tags.ImpactMinimal,
	}
}

func (f *FileTag) addTag(t tags.HierarchicalTag) bool {
	s := t.String()
	for _, existing := range f.Tags {
		if existing == s {
			return false
		}
	}
	f.HierarchicalTags = append(f.HierarchicalTags, t)
	f.Tags = append(f.Tags, s)
	return true
}

// Stats summarizes a Result.
type Stats struct {
	TotalFiles        int            `json:"total_files"`
	FilesByImpact     map[string]int `json:"files_by_impact"`
	FilesByPrimaryTag map[string]int `json:"files_by_primary_tag"`
	NewFiles          int            `json:"new_files_count"`
	CoreFiles         int            `json:"core_files_count"`
	TestFiles         int            `json:"test_files_count"`
	DocFiles          int            `json:"doc_files_count"`
	ModuleCount       int            `json:"module_count"`
}

// Result is the tagging outcome for a whole change set.
type Result struct {
	Files            map[string]*FileTag            `json:"file_tags"`
	Tags             []string                       `json:"pr_tags"`
	HierarchicalTags []tags.HierarchicalTag         `json:"pr_hierarchical_tags"`
	Impact           tags.ImpactLevel               `json:"pr_impact_level"`
	Hierarchy        map[string]map[string][]string `json:"tag_hierarchy"`
	AffectedModules  map[string][]string            `json:"affected_modules"`
	ModuleCategories []string                       `json:"module_categories"`
	Stats            Stats                          `json:"stats"`
	RepoType         string                         `json:"repo_type,omitempty"`
	RepoVersion      string                         `json:"repo_version,omitempty"`
	// Order lists file paths in input order.
	Order []string `json:"-"`
}

func newResult() *Result {
	return &Result{
		Files:            map[string]*FileTag{},
		Tags:             []string{},
		HierarchicalTags: []tags.HierarchicalTag{},
		Impact:           tags.ImpactMinimal,
		Hierarchy:        map[string]map[string][]string{},
		AffectedModules:  map[string][]string{},
		ModuleCategories: []string{},
	}
}

// addToHierarchy files path under primary and secondary, or under
// RootBucket when the tag has no secondary level.
func (r *Result) addToHierarchy(path string, t tags.HierarchicalTag) {
	bucket := t.Secondary
	if bucket == "" {
		bucket = RootBucket
	}
	inner, ok := r.Hierarchy[t.Primary]
	if !ok {
		inner = map[string][]string{}
		r.Hierarchy[t.Primary] = inner
	}
	for _, p := range inner[bucket] {
		if p == path {
			return
		}
	}
	inner[bucket] = append(inner[bucket], path)
}

func (r *Result) addModule(category, name string) {
	for _, n := range r.AffectedModules[category] {
		if n == name {
			return
		}
	}
	r.AffectedModules[category] = append(r.AffectedModules[category], name)
}
