package profile

// Version is the semantic version stamped on builds.
const Version = "0.1.0"
