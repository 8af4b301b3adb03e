package model

type User struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Role          string   `json:"role" yaml:"role"`
	ProjectAccess []string `json:"project_access" yaml:"project_access"`
}
