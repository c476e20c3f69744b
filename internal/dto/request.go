package dto

type ConvertRequest struct {
	ConversionType string `form:"conversion_type"`
	ToExtension    string `form:"to_extension"`
}
