package gatewayapi

// Version is the JSON:API version advertised in every document.
const Version = "1.0"

// Document is a JSON:API top level document.
type Document struct {
	JSONAPI *JSONAPIObject `json:"jsonapi,omitempty"`
	// Data is a *ResourceObject, []ResourceObject, *ResourceIdentifier or
	// []ResourceIdentifier. It is omitted in error documents.
	Data   interface{}            `json:"data,omitempty"`
	Errors []ErrorObject          `json:"errors,omitempty"`
	Links  map[string]Link        `json:"links,omitempty"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// JSONAPIObject describes the server implementation.
type JSONAPIObject struct {
	Version string                 `json:"version"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// Link is a link object.
type Link struct {
	Href string                 `json:"href"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// ResourceObject is one serialized entity.
type ResourceObject struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]interface{}  `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]Link         `json:"links,omitempty"`
	Meta          map[string]interface{}  `json:"meta,omitempty"`
}

// ResourceIdentifier identifies a resource object.
type ResourceIdentifier struct {
	Type string                 `json:"type"`
	ID   string                 `json:"id"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// Relationship is a relationship object. Data is []ResourceIdentifier.
type Relationship struct {
	Data  []ResourceIdentifier `json:"data"`
	Links map[string]Link      `json:"links,omitempty"`
}

// ErrorObject is a JSON:API error.
type ErrorObject struct {
	ID     string                 `json:"id,omitempty"`
	Title  string                 `json:"title"`
	Status string                 `json:"status"`
	Detail string                 `json:"detail,omitempty"`
	Source map[string]string      `json:"source,omitempty"`
	Links  map[string]Link        `json:"links,omitempty"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// NewDocument returns a document carrying data.
func NewDocument(data interface{}) *Document {
	return &Document{JSONAPI: &JSONAPIObject{Version: Version}, Data: data}
}

// ErrorDocument returns a document carrying errors.
func ErrorDocument(errs ...ErrorObject) *Document {
	return &Document{JSONAPI: &JSONAPIObject{Version: Version}, Errors: errs}
}
