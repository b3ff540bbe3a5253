package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectTableNamesFromSQL(t *testing.T) {
	cases := []struct {
		sql  string
		want []string
	}{
		{`select * from t`, []string{"test.t"}},
		{`select * from t1, t2 where t1.a < 10`, []string{"test.t1", "test.t2"}},
		{`select * from t1, xxx.t2`, []string{"test.t1", "xxx.t2"}},
		{`update t set a = 1 where b = 2`, []string{"test.t"}},
		{`insert into t select * from s`, []string{"test.s", "test.t"}},
	}
	for _, c := range cases {
		names, err := CollectTableNamesFromSQL("test", c.sql)
		require.NoError(t, err, c.sql)
		require.Equal(t, c.want, names.ToKeyList(), c.sql)
	}
}

func TestParseOneSQLRejectsGarbage(t *testing.T) {
	_, err := ParseOneSQL("not sql at all")
	require.Error(t, err)
}

func TestNormalizeDigest(t *testing.T) {
	_, d1 := NormalizeDigest("select * from t where a = 1")
	_, d2 := NormalizeDigest("select * from t where a = 2")
	_, d3 := NormalizeDigest("select * from t where b = 1")
	require.Equal(t, d1, d2) // constants are normalized away
	require.NotEqual(t, d1, d3)
}

func TestIsSystemSchemaName(t *testing.T) {
	require.True(t, IsSystemSchemaName("mysql"))
	require.True(t, IsSystemSchemaName("INFORMATION_SCHEMA"))
	require.True(t, IsSystemSchemaName("pg_catalog"))
	require.False(t, IsSystemSchemaName("test"))
}
