package domain

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v []string) {
	if v != nil {
		*dst = v
	}
}

type ServicePatch struct {
	Title       *string  `json:"title,omitempty"`
	Subtitle    *string  `json:"subtitle,omitempty"`
	Description *string  `json:"description,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	IconName    *string  `json:"icon_name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Status      *Status  `json:"status,omitempty"`
}

func (p ServicePatch) ApplyTo(s *ServiceOffering) {
	set(&s.Title, p.Title)
	set(&s.Subtitle, p.Subtitle)
	set(&s.Description, p.Description)
	setList(&s.Benefits, p.Benefits)
	set(&s.ImageURL, p.ImageURL)
	set(&s.IconName, p.IconName)
	set(&s.Category, p.Category)
	set(&s.Status, p.Status)
}

type JobPatch struct {
	Title        *string  `json:"title,omitempty"`
	Department   *string  `json:"department,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Status       *Status  `json:"status,omitempty"`
}

func (p JobPatch) ApplyTo(j *JobOpening) {
	set(&j.Title, p.Title)
	set(&j.Department, p.Department)
	set(&j.Location, p.Location)
	set(&j.Type, p.Type)
	set(&j.Description, p.Description)
	setList(&j.Requirements, p.Requirements)
	set(&j.Status, p.Status)
}

type ProgramPatch struct {
	Title        *string  `json:"title,omitempty"`
	Subtitle     *string  `json:"subtitle,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Department   *string  `json:"department,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Status       *Status  `json:"status,omitempty"`
}

func (p ProgramPatch) ApplyTo(s *StudentProgram) {
	set(&s.Title, p.Title)
	set(&s.Subtitle, p.Subtitle)
	set(&s.Category, p.Category)
	set(&s.Department, p.Department)
	set(&s.Type, p.Type)
	set(&s.Location, p.Location)
	set(&s.Description, p.Description)
	setList(&s.Requirements, p.Requirements)
	set(&s.ImageURL, p.ImageURL)
	set(&s.Status, p.Status)
}

type BlogPatch struct {
	Title      *string  `json:"title,omitempty"`
	Slug       *string  `json:"slug,omitempty"`
	Excerpt    *string  `json:"excerpt,omitempty"`
	Content    *string  `json:"content,omitempty"`
	CoverImage *string  `json:"cover_image,omitempty"`
	Author     *string  `json:"author,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Status     *Status  `json:"status,omitempty"`
}

func (p BlogPatch) ApplyTo(b *BlogPost) {
	set(&b.Title, p.Title)
	set(&b.Slug, p.Slug)
	set(&b.Excerpt, p.Excerpt)
	set(&b.Content, p.Content)
	set(&b.CoverImage, p.CoverImage)
	set(&b.Author, p.Author)
	setList(&b.Tags, p.Tags)
	set(&b.Status, p.Status)
}
