package exc

const (
	CodeUnknownFatal                  = "M0000"
	CodeFileNotFound                  = "M0001"
	CodeUnsuportedFileSystemOperation = "M0002"
	CodePermissionDenied              = "M0003"
	CodeUnsupportedFileFormat         = "M0004"
	CodeUnexpectedEOF                 = "M0005"
	CodeProtobufParseError            = "M0006"
	CodeInvalidNumber                 = "M0007"
	CodeEvaluation                    = "M0008"
)

// Parse failure codes. Every parsec failure carries exactly one of these.
const (
	CodeMismatch      = "P0001"
	CodeEndOfInput    = "P0002"
	CodeFatal         = "P0003"
	CodeNoAlternative = "P0004"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
