package guide

// Field identifies one input of the model API form by its dotted path in the
// form's field tree.
type Field string

// Fields of the model API form.
const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldModelType   Field = "modelType"

	FieldMethod       Field = "modelAPI.method"
	FieldURL          Field = "modelAPI.url"
	FieldAuthType     Field = "modelAPI.authType"
	FieldAuthUsername Field = "modelAPI.authTypeConfig.username"
	FieldAuthPassword Field = "modelAPI.authTypeConfig.password"
	FieldAuthToken    Field = "modelAPI.authTypeConfig.token"

	FieldRequestMediaType Field = "modelAPI.requestBody.mediaType"
	FieldRequestParamName Field = "modelAPI.requestBody.properties.field"
	FieldRequestParamType Field = "modelAPI.requestBody.properties.type"

	FieldParamType    Field = "modelAPI.parameters.paramType"
	FieldURLParamName Field = "modelAPI.parameters.params.name"
	FieldURLParamType Field = "modelAPI.parameters.params.type"

	FieldHeaderName  Field = "modelAPI.requestHeaders.name"
	FieldHeaderValue Field = "modelAPI.requestHeaders.value"

	FieldResponseStatusCode Field = "modelAPI.response.statusCode"
	FieldResponseMediaType  Field = "modelAPI.response.mediaType"
	FieldResponseSchemaType Field = "modelAPI.response.schema.type"

	FieldRateLimit         Field = "modelAPI.requestConfig.rateLimit"
	FieldBatchLimit        Field = "modelAPI.requestConfig.batchLimit"
	FieldConnectionRetries Field = "modelAPI.requestConfig.connectionRetries"
	FieldMaxConnections    Field = "modelAPI.requestConfig.maxConnections"
	FieldConnectionTimeout Field = "modelAPI.requestConfig.connectionTimeout"
	FieldBatchStrategy     Field = "modelAPI.requestConfig.batchStrategy"
)

// Tab names a tab of the host form. The zero value means the field sits
// outside the tabbed area.
type Tab string

// Tabs of the model API form, in display order.
const (
	TabNone           Tab = ""
	TabRequestBody    Tab = "requestBody"
	TabURLParameters  Tab = "urlParameters"
	TabRequestHeaders Tab = "requestHeaders"
	TabResponse       Tab = "response"
	TabConnection     Tab = "connection"
)

// Tabs returns the form tabs in display order.
func Tabs() []Tab {
	return []Tab{TabRequestBody, TabURLParameters, TabRequestHeaders, TabResponse, TabConnection}
}

// Label returns the human-readable tab title.
func (t Tab) Label() string {
	switch t {
	case TabRequestBody:
		return "Request Body"
	case TabURLParameters:
		return "URL Parameters"
	case TabRequestHeaders:
		return "Request Headers"
	case TabResponse:
		return "Response"
	case TabConnection:
		return "Connection"
	default:
		return ""
	}
}

type fieldInfo struct {
	label string
	tab   Tab
}

// fieldTable is ordered the way the form lays fields out.
var fieldTable = []struct {
	field Field
	info  fieldInfo
}{
	{FieldName, fieldInfo{"Config Name", TabNone}},
	{FieldDescription, fieldInfo{"Description", TabNone}},
	{FieldModelType, fieldInfo{"Model Type", TabNone}},
	{FieldMethod, fieldInfo{"Method", TabNone}},
	{FieldURL, fieldInfo{"Model URL", TabNone}},
	{FieldAuthType, fieldInfo{"Auth Type", TabNone}},
	{FieldAuthUsername, fieldInfo{"Username", TabNone}},
	{FieldAuthPassword, fieldInfo{"Password", TabNone}},
	{FieldAuthToken, fieldInfo{"Token", TabNone}},
	{FieldRequestMediaType, fieldInfo{"Media Type", TabRequestBody}},
	{FieldRequestParamName, fieldInfo{"Param Names", TabRequestBody}},
	{FieldRequestParamType, fieldInfo{"Param Types", TabRequestBody}},
	{FieldParamType, fieldInfo{"Param Placement", TabURLParameters}},
	{FieldURLParamName, fieldInfo{"Param Names", TabURLParameters}},
	{FieldURLParamType, fieldInfo{"Param Types", TabURLParameters}},
	{FieldHeaderName, fieldInfo{"Header Names", TabRequestHeaders}},
	{FieldHeaderValue, fieldInfo{"Header Values", TabRequestHeaders}},
	{FieldResponseStatusCode, fieldInfo{"Success Status", TabResponse}},
	{FieldResponseMediaType, fieldInfo{"Media Type", TabResponse}},
	{FieldResponseSchemaType, fieldInfo{"Schema Type", TabResponse}},
	{FieldRateLimit, fieldInfo{"Rate Limit", TabConnection}},
	{FieldBatchLimit, fieldInfo{"Batch Limit", TabConnection}},
	{FieldConnectionRetries, fieldInfo{"Retries", TabConnection}},
	{FieldMaxConnections, fieldInfo{"Max Connections", TabConnection}},
	{FieldConnectionTimeout, fieldInfo{"Timeout (s)", TabConnection}},
	{FieldBatchStrategy, fieldInfo{"Batch Strategy", TabConnection}},
}

var fieldIndex = func() map[Field]fieldInfo {
	m := make(map[Field]fieldInfo, len(fieldTable))
	for _, e := range fieldTable {
		m[e.field] = e.info
	}
	return m
}()

// AllFields returns every form field in layout order.
func AllFields() []Field {
	out := make([]Field, len(fieldTable))
	for i, e := range fieldTable {
		out[i] = e.field
	}
	return out
}

// Known reports whether f belongs to the form.
func (f Field) Known() bool {
	_, ok := fieldIndex[f]
	return ok
}

// Label returns the field's display label, or the raw path for unknown fields.
func (f Field) Label() string {
	if info, ok := fieldIndex[f]; ok {
		return info.label
	}
	return string(f)
}

// Tab returns the tab that holds f.
func (f Field) Tab() Tab {
	return fieldIndex[f].tab
}

// FieldRef points at one form field and, optionally, the tab containing it.
type FieldRef struct {
	Field Field `json:"field"`
	Tab   Tab   `json:"tab,omitempty"`
}

// Ref builds a FieldRef for f carrying the tab the form places it on.
func Ref(f Field) FieldRef {
	return FieldRef{Field: f, Tab: f.Tab()}
}

// Refs builds FieldRefs for fs in order.
func Refs(fs ...Field) []FieldRef {
	out := make([]FieldRef, len(fs))
	for i, f := range fs {
		out[i] = Ref(f)
	}
	return out
}
