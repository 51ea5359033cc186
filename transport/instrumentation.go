package transport

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/haowjy/letta-stream-go/transport"

var logger = otelslog.NewLogger(scopeName)
