package diag

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/haowjy/letta-stream-go/diag"

var logger = otelslog.NewLogger(scopeName)
