package libraries

type CreateLibraryPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
	Root string `json:"root" mod:"trim" validate:"required,locator"`
}

type ListLibrariesQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type UpdateLibraryPayload struct {
	Name *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Root *string `json:"root,omitempty" mod:"trim" validate:"omitempty,locator"`
}
