// Package schema serves the OpenAPI description of the HTTP API.
package schema

type Document struct {
	OpenAPI    string              `yaml:"openapi" json:"openapi"`
	Info       Info                `yaml:"info" json:"info"`
	Paths      map[string]PathItem `yaml:"paths" json:"paths"`
	Components Components          `yaml:"components" json:"components"`
}

type Info struct {
	Title   string `yaml:"title" json:"title"`
	Version string `yaml:"version" json:"version"`
}

type PathItem map[string]*Operation

type Operation struct {
	OperationID string                `yaml:"operationId" json:"operationId"`
	Summary     string                `yaml:"summary" json:"summary"`
	Tags        []string              `yaml:"tags" json:"tags"`
	Parameters  []Parameter           `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody *RequestBody          `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
	Responses   map[string]Response   `yaml:"responses" json:"responses"`
	Security    []map[string][]string `yaml:"security,omitempty" json:"security,omitempty"`
}

type Parameter struct {
	Name     string  `yaml:"name" json:"name"`
	In       string  `yaml:"in" json:"in"`
	Required bool    `yaml:"required" json:"required"`
	Schema   *Schema `yaml:"schema" json:"schema"`
}

type RequestBody struct {
	Required bool                 `yaml:"required" json:"required"`
	Content  map[string]MediaType `yaml:"content" json:"content"`
}

type Response struct {
	Description string               `yaml:"description" json:"description"`
	Content     map[string]MediaType `yaml:"content,omitempty" json:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `yaml:"schema" json:"schema"`
}

type Schema struct {
	Ref        string             `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Type       string             `yaml:"type,omitempty" json:"type,omitempty"`
	Format     string             `yaml:"format,omitempty" json:"format,omitempty"`
	Nullable   bool               `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	ReadOnly   bool               `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	WriteOnly  bool               `yaml:"writeOnly,omitempty" json:"writeOnly,omitempty"`
	Required   []string           `yaml:"required,omitempty" json:"required,omitempty"`
	Properties map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	Items      *Schema            `yaml:"items,omitempty" json:"items,omitempty"`
}

type Components struct {
	Schemas         map[string]*Schema        `yaml:"schemas" json:"schemas"`
	SecuritySchemes map[string]SecurityScheme `yaml:"securitySchemes" json:"securitySchemes"`
}

type SecurityScheme struct {
	Type        string `yaml:"type" json:"type"`
	In          string `yaml:"in" json:"in"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

func ref(name string) *Schema { return &Schema{Ref: "#/components/schemas/" + name} }

var (
	integer  = &Schema{Type: "integer"}
	str      = &Schema{Type: "string"}
	boolean  = &Schema{Type: "boolean"}
	datetime = &Schema{Type: "string", Format: "date-time", ReadOnly: true}
	readID   = &Schema{Type: "integer", ReadOnly: true}
)

func object(required []string, props map[string]*Schema) *Schema {
	return &Schema{Type: "object", Required: required, Properties: props}
}

func paginated(item string) *Schema {
	return object([]string{"count", "results"}, map[string]*Schema{
		"count":    integer,
		"next":     {Type: "string", Format: "uri", Nullable: true},
		"previous": {Type: "string", Format: "uri", Nullable: true},
		"results":  {Type: "array", Items: ref(item)},
	})
}

func jsonBody(s *Schema) *RequestBody {
	return &RequestBody{Required: true, Content: map[string]MediaType{"application/json": {Schema: s}}}
}

func jsonResponse(desc string, s *Schema) Response {
	return Response{Description: desc, Content: map[string]MediaType{"application/json": {Schema: s}}}
}

func query(name string, required bool) Parameter {
	return Parameter{Name: name, In: "query", Required: required, Schema: integer}
}

func pathID() Parameter {
	return Parameter{Name: "id", In: "path", Required: true, Schema: integer}
}

var (
	tokenAuth    = []map[string][]string{{"tokenAuth": {}}}
	unauthorized = jsonResponse("Authentication credentials were not provided", ref("Error"))
	badRequest   = jsonResponse("Invalid input", ref("Error"))
	notFound     = jsonResponse("Not found", ref("Error"))
	pageParams   = []Parameter{query("limit", false), query("offset", false)}
)

// Build returns the API description. Keep it in step with the routes
// registered by the chat and users packages.
func Build(version string) *Document {
	userFields := map[string]*Schema{
		"id":         readID,
		"email":      {Type: "string", Format: "email"},
		"password":   {Type: "string", WriteOnly: true},
		"first_name": str,
		"last_name":  str,
	}

	return &Document{
		OpenAPI: "3.0.3",
		Info:    Info{Title: "Scenyx Chat API", Version: version},
		Components: Components{
			SecuritySchemes: map[string]SecurityScheme{
				"tokenAuth": {Type: "apiKey", In: "header", Name: "Authorization", Description: `Token-based authentication with required prefix "Token"`},
			},
			Schemas: map[string]*Schema{
				"Error":       object([]string{"error"}, map[string]*Schema{"error": str}),
				"User":        object([]string{"email", "first_name", "last_name"}, userFields),
				"PatchedUser": {Type: "object", Properties: userFields},
				"AuthToken": object([]string{"email", "password"}, map[string]*Schema{
					"email":    {Type: "string", Format: "email"},
					"password": str,
				}),
				"Token": object([]string{"token", "user_id"}, map[string]*Schema{"token": str, "user_id": integer}),
				"ThreadWrite": object([]string{"participant_one", "participant_two"}, map[string]*Schema{
					"participant_one": integer,
					"participant_two": integer,
				}),
				"Thread": object(nil, map[string]*Schema{
					"id":              readID,
					"participant_one": ref("User"),
					"participant_two": ref("User"),
					"created_at":      datetime,
					"updated_at":      datetime,
				}),
				"MessageWrite": object([]string{"text", "thread"}, map[string]*Schema{"text": str, "thread": integer}),
				"Message": object(nil, map[string]*Schema{
					"id":         readID,
					"sender":     ref("User"),
					"text":       str,
					"thread":     integer,
					"is_read":    boolean,
					"created_at": datetime,
				}),
				"UnreadCount": object(nil, map[string]*Schema{
					"user":                      ref("User"),
					"number_of_unread_messages": integer,
				}),
				"PaginatedThreadList":  paginated("Thread"),
				"PaginatedMessageList": paginated("Message"),
				"PaginatedUserList":    paginated("User"),
			},
		},
		Paths: map[string]PathItem{
			"/chat/create-retrieve-thread/": {
				"post": {
					OperationID: "chat_create_retrieve_thread",
					Summary:     "Create the thread for a pair of users, or return the existing one",
					Tags:        []string{"chat"},
					RequestBody: jsonBody(ref("ThreadWrite")),
					Security:    tokenAuth,
					Responses: map[string]Response{
						"200": jsonResponse("Existing thread", ref("Thread")),
						"201": jsonResponse("Created thread", ref("Thread")),
						"400": badRequest,
						"401": unauthorized,
					},
				},
			},
			"/chat/remove-thread/{id}/": {
				"delete": {
					OperationID: "chat_remove_thread",
					Summary:     "Delete a thread and its messages",
					Tags:        []string{"chat"},
					Parameters:  []Parameter{pathID()},
					Security:    tokenAuth,
					Responses: map[string]Response{
						"204": {Description: "Deleted"},
						"401": unauthorized,
						"404": notFound,
					},
				},
			},
			"/chat/retrieve-thread-list/": {
				"get": {
					OperationID: "chat_retrieve_thread_list",
					Summary:     "List threads of a user, defaulting to the caller",
					Tags:        []string{"chat"},
					Parameters:  append([]Parameter{query("user", false)}, pageParams...),
					Security:    tokenAuth,
					Responses: map[string]Response{
						"200": jsonResponse("Threads", ref("PaginatedThreadList")),
						"400": badRequest,
						"401": unauthorized,
					},
				},
			},
			"/chat/create-retrieve-message/": {
				"get": {
					OperationID: "chat_retrieve_message_list",
					Summary:     "List messages of a thread",
					Tags:        []string{"chat"},
					Parameters:  append([]Parameter{query("thread_id", true)}, pageParams...),
					Security:    tokenAuth,
					Responses: map[string]Response{
						"200": jsonResponse("Messages", ref("PaginatedMessageList")),
						"400": badRequest,
						"401": unauthorized,
					},
				},
				"post": {
					OperationID: "chat_create_message",
					Summary:     "Post a message from the caller",
					Tags:        []string{"chat"},
					RequestBody: jsonBody(ref("MessageWrite")),
					Security:    tokenAuth,
					Responses: map[string]Response{
						"201": jsonResponse("Created message", ref("Message")),
						"400": badRequest,
						"401": unauthorized,
					},
				},
			},
			"/chat/mark-message-as-read/{id}/": {
				"patch": {
					OperationID: "chat_mark_message_as_read",
					Summary:     "Mark a message as read",
					Tags:        []string{"chat"},
					Parameters:  []Parameter{pathID()},
					Security:    tokenAuth,
					Responses: map[string]Response{
						"200": jsonResponse("Message", ref("Message")),
						"401": unauthorized,
						"404": notFound,
					},
				},
			},
			"/chat/retrieve-number-of-unread-messages/": {
				"get": {
					OperationID: "chat_retrieve_number_of_unread_messages",
					Summary:     "Count unread messages sent by the caller",
					Tags:        []string{"chat"},
					Security:    tokenAuth,
					Responses: map[string]Response{
						"200": jsonResponse("Unread count", ref("UnreadCount")),
						"401": unauthorized,
					},
				},
			},
			"/user/create/": {
				"post": {
					OperationID: "user_create",
					Summary:     "Register a new user",
					Tags:        []string{"user"},
					RequestBody: jsonBody(ref("User")),
					Responses: map[string]Response{
						"201": jsonResponse("Created user", ref("User")),
						"400": badRequest,
					},
				},
			},
			"/user/token/": {
				"post": {
					OperationID: "user_token",
					Summary:     "Exchange credentials for an auth token",
					Tags:        []string{"user"},
					RequestBody: jsonBody(ref("AuthToken")),
					Responses: map[string]Response{
						"200": jsonResponse("Token", ref("Token")),
						"400": badRequest,
					},
				},
			},
			"/user/me/": {
				"get": {
					OperationID: "user_me_retrieve",
					Summary:     "Retrieve the caller",
					Tags:        []string{"user"},
					Security:    tokenAuth,
					Responses:   map[string]Response{"200": jsonResponse("User", ref("User")), "401": unauthorized},
				},
				"put": {
					OperationID: "user_me_update",
					Summary:     "Replace the caller's profile",
					Tags:        []string{"user"},
					RequestBody: jsonBody(ref("User")),
					Security:    tokenAuth,
					Responses:   map[string]Response{"200": jsonResponse("User", ref("User")), "400": badRequest, "401": unauthorized},
				},
				"patch": {
					OperationID: "user_me_partial_update",
					Summary:     "Update some of the caller's fields",
					Tags:        []string{"user"},
					RequestBody: jsonBody(ref("PatchedUser")),
					Security:    tokenAuth,
					Responses:   map[string]Response{"200": jsonResponse("User", ref("User")), "400": badRequest, "401": unauthorized},
				},
			},
			"/user/list/": {
				"get": {
					OperationID: "user_list",
					Summary:     "List users",
					Tags:        []string{"user"},
					Parameters:  pageParams,
					Security:    tokenAuth,
					Responses:   map[string]Response{"200": jsonResponse("Users", ref("PaginatedUserList")), "401": unauthorized},
				},
			},
		},
	}
}
