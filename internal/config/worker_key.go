package config

type WorkerKeyStruct struct {
	RefreshSummaryQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RefreshSummaryQueue: "refresh_summary_queue",
}
