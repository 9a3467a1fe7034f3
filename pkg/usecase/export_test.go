package usecase

// EncodeReport is exported for testing
var EncodeReport = encodeReport

// BuildOffboardingMail is exported for testing
var BuildOffboardingMail = buildOffboardingMail
