package confluence

// Wire shapes of the Confluence content API. Only the fields the
// synchronizer needs are decoded.

type contentList struct {
	Results []content `json:"results"`
	Size    int       `json:"size"`
}

type content struct {
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type,omitempty"`
	Title     string     `json:"title"`
	Space     *spaceRef  `json:"space,omitempty"`
	Version   *version   `json:"version,omitempty"`
	Ancestors []ancestor `json:"ancestors,omitempty"`
	Body      *body      `json:"body,omitempty"`
}

type spaceRef struct {
	Key string `json:"key"`
}

type version struct {
	Number int `json:"number"`
}

type ancestor struct {
	ID string `json:"id"`
}

type body struct {
	Storage storage `json:"storage"`
}

type storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type label struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

type labelList struct {
	Results []label `json:"results"`
}

type apiMessage struct {
	Message string `json:"message"`
}
