// Package reader opens Apache Parquet datasets as queryable repositories.
//
// A repository is a single parquet file or a glob of files sharing one
// schema. Its name becomes the table name in queries:
//
//	repos, err := reader.ValidateRepositories([]string{"users.parquet", "logs=data/2024-*.parquet"})
//	if err != nil {
//	    return err
//	}
//	env := query.NewEnvironment(reader.Schema(repos))
//	outcome, err := query.Evaluate(env, reader.NewProvider(repos), stmt)
//
// Rows of a glob repository carry an extra "_file" column holding the
// source file path. Column types are derived from the parquet schema of the
// first file; nested groups use dot notation (address.city) and repeated
// fields become arrays.
//
// The package uses github.com/parquet-go/parquet-go for the underlying
// parquet file operations.
package reader
