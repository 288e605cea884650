package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// bindEnv registers every mapstructure key of Config so that nested values
// such as REPLICATE_API_TOKEN resolve from the environment without a config
// file on disk.
func bindEnv(v *viper.Viper) {
	for _, key := range configKeys(reflect.TypeOf(Config{}), "") {
		_ = v.BindEnv(key)
	}
}

func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			tag = strings.ToUpper(f.Name)
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, configKeys(f.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
