package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Tool names understood by the gateway.
const (
	GetRepositoryInfo = "get_repository_info"
	ListIssues        = "list_issues"
	GetFileContents   = "get_file_contents"
	SearchFiles       = "search_files"
	ListCommits       = "list_commits"
	SearchCode        = "search_code"
)

// RepoRef identifies a repository.
type RepoRef struct {
	Owner string `json:"owner" jsonschema_description:"Repository owner (user or organization)"`
	Repo  string `json:"repo" jsonschema_description:"Repository name"`
}

type RepositoryInfoInput struct {
	RepoRef
}

type ListIssuesInput struct {
	RepoRef
	State   string   `json:"state,omitempty" jsonschema:"enum=open,enum=closed,enum=all" jsonschema_description:"Issue state filter"`
	Labels  []string `json:"labels,omitempty" jsonschema_description:"Only issues carrying all of these labels"`
	PerPage int      `json:"per_page,omitempty" jsonschema:"minimum=1,maximum=100"`
}

type FileContentsInput struct {
	RepoRef
	Path string `json:"path" jsonschema_description:"Path of the file inside the repository"`
	Ref  string `json:"ref,omitempty" jsonschema_description:"Branch or tag or commit SHA"`
}

type SearchFilesInput struct {
	RepoRef
	Query string `json:"query" jsonschema_description:"File name or glob pattern to look for"`
	Path  string `json:"path,omitempty" jsonschema_description:"Directory to restrict the search to"`
}

type ListCommitsInput struct {
	RepoRef
	SHA     string `json:"sha,omitempty" jsonschema_description:"Branch name or commit SHA to start listing from"`
	Path    string `json:"path,omitempty" jsonschema_description:"Only commits touching this path"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"minimum=1,maximum=100"`
}

type SearchCodeInput struct {
	Query    string `json:"query" jsonschema_description:"Code search query"`
	Owner    string `json:"owner,omitempty" jsonschema_description:"Restrict to repositories of this owner"`
	Repo     string `json:"repo,omitempty" jsonschema_description:"Restrict to this repository (requires owner)"`
	Language string `json:"language,omitempty"`
}

// Catalog returns the fixed tool catalog in prompt order.
func Catalog() []Spec {
	return []Spec{
		{
			Name:        GetRepositoryInfo,
			Description: "Get repository metadata: description, stars, forks, default branch, languages, topics.",
			Parameters:  GenerateSchema(&RepositoryInfoInput{}),
		},
		{
			Name:        ListIssues,
			Description: "List issues of a repository, optionally filtered by state and labels.",
			Parameters:  GenerateSchema(&ListIssuesInput{}),
		},
		{
			Name:        GetFileContents,
			Description: "Retrieve the contents of a file at a path, optionally at a given ref.",
			Parameters:  GenerateSchema(&FileContentsInput{}),
		},
		{
			Name:        SearchFiles,
			Description: "Find files in a repository whose names match a pattern.",
			Parameters:  GenerateSchema(&SearchFilesInput{}),
		},
		{
			Name:        ListCommits,
			Description: "List recent commits of a repository, optionally for a branch or path.",
			Parameters:  GenerateSchema(&ListCommitsInput{}),
		},
		{
			Name:        SearchCode,
			Description: "Search source code across repositories for a query string.",
			Parameters:  GenerateSchema(&SearchCodeInput{}),
		},
	}
}

// GenerateSchema reflects a JSON Schema from an input struct. Embedded
// structs are inlined and fields without omitempty are required.
func GenerateSchema(input any) json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(input)

	data, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}
