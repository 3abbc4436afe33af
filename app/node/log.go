package node

import (
	"github.com/kaspanet/ledgersim/infrastructure/logger"
	"github.com/kaspanet/ledgersim/util/panics"
)

var log = logger.RegisterSubSystem("NODE")
var relayLog = logger.RegisterSubSystem("RELY")
var spawn = panics.GoroutineWrapperFunc(log)
