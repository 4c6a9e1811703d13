package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emailbuilder/service/internal/document"
	"github.com/emailbuilder/service/internal/upload"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the document an editor would start from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "source: %s %s\n", s.Source.Kind, s.Source.Name)
			return writeDocument(cmd.OutOrStdout(), s.Document)
		},
	}
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	var (
		blockID string
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image and point an Image block at it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			if !s.CanUpload() {
				return upload.ErrNotConfigured
			}

			publicURL, err := s.UploadImage(cmd.Context(), blockID, upload.PathPicker{Path: args[0]})
			if err != nil {
				return errors.New(upload.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), publicURL)

			if !save {
				return nil
			}
			redirect, err := s.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), redirect)
			return nil
		},
	}
	cmd.Flags().StringVar(&blockID, "block", "", "id of the Image block to update")
	cmd.Flags().BoolVar(&save, "save", false, "save the document after a successful upload")
	_ = cmd.MarkFlagRequired("block")
	return cmd
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the resolved document to the host application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			redirect, err := s.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), redirect)
			return nil
		},
	}
}

func newShareCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print a #code/ fragment carrying the resolved document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			fragment, err := s.ShareFragment()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fragment)
			return nil
		},
	}
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List built-in sample names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range document.SampleNames() {
				fmt.Fprintln(cmd.OutOrStdout(), document.SamplePrefix+name)
			}
		},
	}
}
