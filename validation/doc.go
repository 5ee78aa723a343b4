// Package validation validates configuration structs through
// go-playground/validator struct tags and reports failures as
// errors.AppError values with per-field details.
//
//	type Config struct {
//	    Name    string   `mapstructure:"name" validate:"required"`
//	    Modules []string `mapstructure:"modules" validate:"dive,module_name"`
//	}
//
//	if err := validation.Validate(&cfg); err != nil { ... }
package validation
