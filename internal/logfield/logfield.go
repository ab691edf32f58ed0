package logfield

const (
	ConfigurationID  = "configurationID"
	Title            = "title"
	JobName          = "jobName"
	JobRunID         = "jobRunID"
	SheetID          = "sheetID"
	Range            = "range"
	TableID          = "tableID"
	SchemaFile       = "schemaFile"
	WriteDisposition = "writeDisposition"
	Rows             = "rows"
	Columns          = "columns"
	DegradedCells    = "degradedCells"
	Error            = "error"
	ErrorKind        = "errorKind"
	Elapsed          = "elapsed"
)
