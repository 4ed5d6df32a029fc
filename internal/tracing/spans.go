package tracing

// TracerName is the instrumentation name used for command stack spans.
const TracerName = "github.com/dshills/drafter/internal/command"

// Span attribute keys.
const (
	AttrTrigger   = "stack.trigger"
	AttrCommand   = "command.name"
	AttrActionID  = "action.id"
	AttrOperation = "action.operation"

	AttrScriptPath = "script.path"
)

// Span name prefixes.
const (
	SpanPrefixCommand = "command "
	SpanPrefixScript  = "script "
)
