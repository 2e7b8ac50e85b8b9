package handler

const (
	jsonKeyMessage = "message"

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidMultipartForm    = "invalid multipart form"

	msgNotAuthenticated    = "Not authenticated"
	msgInvalidEmail        = "Please input correct email"
	msgEmailTaken          = "Email already registered, please use another email"
	msgUserCreated         = "User created"
	msgNoSuchUser          = "A user with this email could not be found."
	msgUserNotFound        = "User not found"
	msgWrongPassword       = "Wrong password"
	msgPasswordProcessFail = "failed to process password"
	msgCreateAccountFail   = "failed to create account"
	msgLookupUserFail      = "Error getting users"
	msgGenerateTokenFail   = "failed to generate token"

	msgIncompleteForm    = "Please complete all the forms"
	msgPatientNotFound   = "Patient not found"
	msgPatientCreated    = "Patient record has been created"
	msgPatientUpdated    = "Patient record has been updated"
	msgPatientDeleted    = "Patient record has been deleted"
	msgListPatientsFail  = "Error getting patients"
	msgGetPatientFail    = "Error getting patient"
	msgCreatePatientFail = "Error creating patient"
	msgUpdatePatientFail = "Error updating patient"
	msgDeletePatientFail = "Error deleting patient"
	msgStoreUploadFail   = "failed to store attachment"

	msgTooManyAttachmentsFmt = "a maximum of %d attachments is allowed"
)

const (
	fieldFullName             = "fullName"
	fieldAge                  = "age"
	fieldGender               = "gender"
	fieldAddress              = "address"
	fieldDiagnosisDescription = "diagnosisDescription"
	fieldDiagnosisTime        = "diagnosisTime"
	fieldDiagnosisImages      = "diagnosisImageUrl"
)
