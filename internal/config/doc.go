// Package config loads bkp's own settings.
//
// Settings live in an optional config.yaml inside the configuration
// directory. Every key can be overridden from the environment with the BKP_
// prefix (BKP_LOG_FILE, BKP_SWEEP_AFTER_RUN, ...):
//
//	manifest_file: bkp.txt     # relative to the config directory unless absolute
//	log_file: bkp.log
//	log_format: json           # json or text
//	sweep_after_run: false     # remove empty snapshot folders after each run
//
// A missing file is not an error; [Load] falls back to the values returned
// by [Default].
package config
