package planflow

// Version is the release of the library and the planflow CLI.
const Version = "0.4.0"
