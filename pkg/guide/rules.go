package guide

// Guide step names.
const (
	StepModelURL         = "Model URL"
	StepRequestParams    = "Parameters in request data"
	StepURLParams        = "URL Parameters"
	StepBearerToken      = "Bearer Token"
	StepUsernamePassword = "Username/Password"
	StepRequestHeaders   = "Request Headers"
	StepResponse         = "Response Settings"

	// stepAuthToken is an older name of StepBearerToken that is still cleared.
	stepAuthToken = "Auth Token"
)

// effect is the set of store mutations a rule branch performs.
type effect struct {
	enable  []Field
	disable []Field
	remove  []string
	add     []GuideStep
}

func (e effect) apply(tx *Tx) {
	for _, f := range e.enable {
		tx.EnableField(f)
	}
	for _, f := range e.disable {
		tx.DisableField(f)
	}
	for _, name := range e.remove {
		tx.RemoveGuideStep(name)
	}
	for _, g := range e.add {
		tx.AddGuideStep(g.Name, g.Fields...)
	}
}

// rule applies then when its predicate holds for the selection and otherwise
// applies otherwise.
type rule struct {
	name      string
	when      func(itemSet) bool
	then      effect
	otherwise effect
}

func step(name string, fs ...Field) GuideStep {
	return GuideStep{Name: name, Fields: Refs(fs...)}
}

func hasAny(hs ...HelpItem) func(itemSet) bool {
	return func(s itemSet) bool { return s.any(hs...) }
}

func hasWithout(h, without HelpItem) func(itemSet) bool {
	return func(s itemSet) bool { return s.has(h) && !s.has(without) }
}

// defaultRules is evaluated top to bottom on every preset change.
var defaultRules = []rule{
	{
		name: "method",
		when: hasAny(Post, Get),
		then: effect{
			disable: []Field{FieldMethod},
			add:     []GuideStep{step(StepModelURL, FieldURL, FieldMethod)},
		},
		otherwise: effect{
			enable: []Field{FieldMethod},
			remove: []string{StepModelURL, StepRequestParams, StepURLParams},
		},
	},
	{
		name: "request-data",
		when: hasAny(Post),
		then: effect{
			remove: []string{StepURLParams},
			add:    []GuideStep{step(StepRequestParams, FieldRequestParamName, FieldRequestParamType)},
		},
	},
	{
		name: "url-params",
		when: hasWithout(Get, Post),
		then: effect{
			remove: []string{StepRequestParams},
			add:    []GuideStep{step(StepURLParams, FieldURLParamName, FieldURLParamType)},
		},
	},
	{
		name: "auth",
		when: hasAny(BasicAuth, AuthToken),
		then: effect{
			disable: []Field{FieldAuthType},
		},
		otherwise: effect{
			enable: []Field{FieldAuthType},
			remove: []string{stepAuthToken, StepBearerToken, StepUsernamePassword},
		},
	},
	{
		name: "basic-auth",
		when: hasAny(BasicAuth),
		then: effect{
			remove: []string{stepAuthToken, StepBearerToken},
			add:    []GuideStep{step(StepUsernamePassword, FieldAuthUsername, FieldAuthPassword)},
		},
	},
	{
		name: "bearer-token",
		when: hasWithout(AuthToken, BasicAuth),
		then: effect{
			remove: []string{StepUsernamePassword},
			add:    []GuideStep{step(StepBearerToken, FieldAuthToken)},
		},
	},
	{
		name: "param-type",
		when: hasAny(Path, Query),
		then: effect{
			disable: []Field{FieldParamType},
		},
		otherwise: effect{
			enable: []Field{FieldParamType},
		},
	},
	{
		name: "headers",
		when: hasAny(Headers),
		then: effect{
			add: []GuideStep{step(StepRequestHeaders, FieldHeaderName, FieldHeaderValue)},
		},
		otherwise: effect{
			remove: []string{StepRequestHeaders},
		},
	},
	{
		name: "response",
		when: hasAny(Response),
		then: effect{
			add: []GuideStep{step(StepResponse, FieldResponseMediaType, FieldResponseSchemaType)},
		},
		otherwise: effect{
			remove: []string{StepResponse},
		},
	},
}
