package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ MetricsRecorder = NopMetricsRecorder{}
	_ ErrorMapper     = defaultErrorMapper
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ ConfigProvider  = FileConfigLoader{}
	_ OptionsResolver = GoOptionsResolver{}
	_ RawConfigLoader = staticRawConfigLoader{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
